// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Command wiremq is a small MQTT command line client for publishing
// and subscribing against a broker.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/absmach/wiremq/client"
	"github.com/absmach/wiremq/config"
	"github.com/absmach/wiremq/storage/badger"
)

var (
	flagConfig = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to YAML configuration file",
	}
	flagServer = &cli.StringSliceFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "broker address (host:port), repeatable",
	}
	flagClientID = &cli.StringFlag{
		Name:    "client-id",
		Aliases: []string{"i"},
		Usage:   "client identifier (generated when empty)",
	}
	flagUsername = &cli.StringFlag{
		Name:    "username",
		Aliases: []string{"u"},
		Usage:   "username for broker authentication",
	}
	flagPassword = &cli.StringFlag{
		Name:    "password",
		Aliases: []string{"P"},
		Usage:   "password for broker authentication",
	}
	flagQoS = &cli.IntFlag{
		Name:    "qos",
		Aliases: []string{"q"},
		Usage:   "quality of service level (0, 1, or 2)",
		Value:   0,
	}
	flagTopic = &cli.StringFlag{
		Name:     "topic",
		Aliases:  []string{"t"},
		Usage:    "topic name or filter",
		Required: true,
	}
	flagMessage = &cli.StringFlag{
		Name:    "message",
		Aliases: []string{"m"},
		Usage:   "message payload",
	}
	flagRetain = &cli.BoolFlag{
		Name:    "retain",
		Aliases: []string{"r"},
		Usage:   "set the retain flag",
	}
)

func main() {
	app := &cli.App{
		Name:  "wiremq",
		Usage: "MQTT v3.1.1 command line client",
		Flags: []cli.Flag{flagConfig, flagServer, flagClientID, flagUsername, flagPassword},
		Commands: []*cli.Command{
			{
				Name:   "pub",
				Usage:  "publish a message to a topic",
				Flags:  []cli.Flag{flagTopic, flagMessage, flagQoS, flagRetain},
				Action: runPub,
			},
			{
				Name:   "sub",
				Usage:  "subscribe to a topic filter and print messages",
				Flags:  []cli.Flag{flagTopic, flagQoS},
				Action: runSub,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and builds a
// connected client.
func setup(c *cli.Context) (*client.Client, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if servers := c.StringSlice("server"); len(servers) > 0 {
		cfg.Broker.Servers = servers
	}
	if id := c.String("client-id"); id != "" {
		cfg.Broker.ClientID = id
	}
	if user := c.String("username"); user != "" {
		cfg.Broker.Username = user
	}
	if pass := c.String("password"); pass != "" {
		cfg.Broker.Password = pass
	}

	opts, err := cfg.ClientOptions()
	if err != nil {
		return nil, err
	}
	opts.Logger = newLogger(cfg.Log)

	if cfg.Storage.Type == "badger" {
		store, err := badger.New(badger.Config{Dir: cfg.Storage.BadgerDir})
		if err != nil {
			return nil, fmt.Errorf("failed to open message store: %w", err)
		}
		opts.Store = store
	}

	cl, err := client.New(opts)
	if err != nil {
		return nil, err
	}
	if err := cl.Connect(); err != nil {
		return nil, err
	}
	return cl, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}

func runPub(c *cli.Context) error {
	qos := c.Int("qos")
	if qos < 0 || qos > 2 {
		return fmt.Errorf("invalid QoS level: %d", qos)
	}

	cl, err := setup(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	token := cl.Publish(c.String("topic"), []byte(c.String("message")), byte(qos), c.Bool("retain"))
	if err := token.WaitTimeout(30 * time.Second); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	return cl.Disconnect(5 * time.Second)
}

func runSub(c *cli.Context) error {
	qos := c.Int("qos")
	if qos < 0 || qos > 2 {
		return fmt.Errorf("invalid QoS level: %d", qos)
	}

	cl, err := setup(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	token := cl.SubscribeWithHandler(c.String("topic"), byte(qos), func(msg *client.Message) {
		fmt.Printf("%s %s\n", msg.Topic, msg.Payload)
	})
	if err := token.WaitTimeout(30 * time.Second); err != nil {
		return fmt.Errorf("subscribe failed: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	return cl.Disconnect(5 * time.Second)
}
