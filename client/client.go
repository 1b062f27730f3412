// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package client implements a standalone MQTT V3.1.1 client engine:
// connection lifecycle, QoS 0/1/2 delivery with retransmission,
// keepalive, automatic reconnection and session persistence.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/absmach/wiremq/packets"
	"github.com/absmach/wiremq/topics"
	"github.com/absmach/wiremq/transport"
)

// Client is a thread-safe MQTT V3.1.1 client. One instance drives one
// logical broker connection; operations may be issued from any
// goroutine while a background reader delivers inbound packets.
type Client struct {
	opts   *Options
	logger *slog.Logger
	sink   EventSink

	// State management
	state *stateManager

	// Connection
	conn    net.Conn
	connMu  sync.RWMutex
	writeMu sync.Mutex

	// Pending operations (in-flight records)
	pending *pendingStore

	// Message store for QoS 1/2
	store MessageStore

	// Active subscriptions, for routing and resubscribe
	subs *subscriptionRegistry

	// Publishes issued while disconnected (persistent sessions only)
	offline *offlineQueue

	// QoS 2 incoming messages waiting for PUBREL
	qos2Incoming   map[uint16]*Message
	qos2IncomingMu sync.Mutex

	// Lifecycle
	schedStop     chan struct{}
	schedDone     sync.WaitGroup
	readerDone    chan struct{}
	reconnMu      sync.Mutex
	reconnCancel  atomic.Bool

	// Activity tracking for keepalive
	lastSent    time.Time
	lastInbound time.Time
	activityMu  sync.Mutex

	// Server index for round-robin
	serverIdx int
}

// New creates a new MQTT client with the given options.
func New(opts *Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = NewMemoryStore()
	}

	return &Client{
		opts:         opts,
		logger:       opts.Logger,
		sink:         opts.Sink,
		state:        newStateManager(),
		pending:      newPendingStore(opts.MaxInflight),
		store:        store,
		subs:         newSubscriptionRegistry(),
		offline:      newOfflineQueue(opts.MaxOfflineQueue),
		qos2Incoming: make(map[uint16]*Message),
	}, nil
}

// Connect establishes a connection to the broker. It blocks until the
// CONNACK is processed or the attempt fails.
func (c *Client) Connect() error {
	if c.state.isClosed() {
		return ErrClientClosed
	}

	if !c.state.transitionFrom(StateConnecting, StateDisconnected, StateReconnecting) {
		return ErrAlreadyConnected
	}

	c.sink.Connecting()

	if c.opts.CleanSession {
		c.resetSession()
	}

	sessionPresent, err := c.doConnect()
	if err != nil {
		c.state.transition(StateConnecting, StateDisconnected)
		return err
	}

	if !c.state.transition(StateConnecting, StateConnected) {
		// Disconnect or Close raced the attempt; drop the fresh
		// connection instead of finishing it.
		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()
		return ErrAborted
	}
	c.reconnCancel.Store(false)

	c.readerDone = make(chan struct{})
	c.schedStop = make(chan struct{})
	go c.readLoop()
	c.startKeepAlive()
	c.startRetry()

	c.logger.Info("connected",
		slog.String("client_id", c.opts.ClientID),
		slog.Bool("session_present", sessionPresent))
	c.sink.Connected(sessionPresent)

	if !c.opts.CleanSession {
		c.resumeSession(sessionPresent)
	}

	return nil
}

// resetSession discards all delivery state, per clean-session semantics.
func (c *Client) resetSession() {
	c.pending.clear(ErrAborted, nil)
	c.offline.clear(ErrAborted)
	c.subs.clear()
	if err := c.store.Reset(); err != nil {
		c.logger.Warn("failed to reset message store", slog.String("error", err.Error()))
	}

	c.qos2IncomingMu.Lock()
	c.qos2Incoming = make(map[uint16]*Message)
	c.qos2IncomingMu.Unlock()
}

func (c *Client) doConnect() (bool, error) {
	// Try each server in order
	var lastErr error
	for i := 0; i < len(c.opts.Servers); i++ {
		idx := (c.serverIdx + i) % len(c.opts.Servers)
		addr := c.opts.Servers[idx]

		sessionPresent, err := c.connectToServer(addr)
		if err == nil {
			c.serverIdx = idx
			return sessionPresent, nil
		}
		c.logger.Debug("connect attempt failed",
			slog.String("server", addr),
			slog.String("error", err.Error()))
		lastErr = err
	}

	if lastErr != nil {
		return false, fmt.Errorf("%w: %v", ErrConnectFailed, lastErr)
	}
	return false, ErrConnectFailed
}

func (c *Client) dialer() transport.Dialer {
	if c.opts.Dialer != nil {
		return c.opts.Dialer
	}
	if c.opts.TLSConfig != nil {
		return &transport.TLSDialer{Config: c.opts.TLSConfig, Timeout: c.opts.ConnectTimeout}
	}
	return &transport.TCPDialer{Timeout: c.opts.ConnectTimeout}
}

func (c *Client) connectToServer(addr string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.ConnectTimeout)
	defer cancel()

	conn, err := c.dialer().Dial(ctx, addr)
	if err != nil {
		return false, err
	}

	if err := c.sendConnect(conn); err != nil {
		conn.Close()
		return false, err
	}

	sessionPresent, code, err := c.readConnAck(conn)
	if err != nil {
		conn.Close()
		return false, err
	}
	if code != ConnAccepted {
		conn.Close()
		return false, code
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	now := time.Now()
	c.activityMu.Lock()
	c.lastSent = now
	c.lastInbound = now
	c.activityMu.Unlock()

	return sessionPresent, nil
}

func (c *Client) sendConnect(conn net.Conn) error {
	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	defer conn.SetWriteDeadline(time.Time{})

	pkt := &packets.Connect{
		FixedHeader:     packets.FixedHeader{PacketType: packets.ConnectType},
		ClientID:        c.opts.ClientID,
		KeepAlive:       uint16(c.opts.KeepAlive.Seconds()),
		ProtocolName:    "MQTT",
		ProtocolVersion: packets.V311,
		CleanSession:    c.opts.CleanSession,
	}

	if c.opts.Username != "" {
		pkt.UsernameFlag = true
		pkt.Username = c.opts.Username
	}
	if c.opts.Password != "" {
		pkt.PasswordFlag = true
		pkt.Password = []byte(c.opts.Password)
	}

	if c.opts.Will != nil {
		pkt.WillFlag = true
		pkt.WillQoS = c.opts.Will.QoS
		pkt.WillRetain = c.opts.Will.Retain
		pkt.WillTopic = c.opts.Will.Topic
		pkt.WillMessage = c.opts.Will.Payload
	}

	return pkt.Pack(conn)
}

func (c *Client) readConnAck(conn net.Conn) (bool, ConnAckCode, error) {
	conn.SetReadDeadline(time.Now().Add(c.opts.ConnectTimeout))
	defer conn.SetReadDeadline(time.Time{})

	pkt, err := packets.ReadPacket(conn)
	if err != nil {
		return false, 0, err
	}
	ack, ok := pkt.(*packets.ConnAck)
	if !ok {
		return false, 0, ErrUnexpectedPacket
	}
	return ack.SessionPresent, ConnAckCode(ack.ReturnCode), nil
}

// resumeSession re-establishes a persistent session: outbound records
// persisted by a previous process run are reinstated, pending QoS 1/2
// sends resume with the DUP flag, recorded subscriptions are re-issued
// and the offline queue drains.
func (c *Client) resumeSession(sessionPresent bool) {
	for _, msg := range c.store.GetAllOutbound() {
		if msg.QoS == 0 || msg.PacketID == 0 {
			continue
		}
		c.pending.restore(msg.PacketID, msg)
	}

	for _, r := range c.pending.publishes() {
		c.retransmit(r)
	}

	if !sessionPresent {
		for _, rec := range c.subs.snapshot() {
			c.sendSubscribeRequest(map[string]byte{rec.filter: rec.qos}, rec.handler, nil)
		}
	}

	for _, item := range c.offline.drain() {
		c.sendQueued(item)
	}
}

// Disconnect gracefully disconnects from the broker: it waits for
// in-flight QoS > 0 operations to settle, bounded by timeout, then
// sends DISCONNECT and tears the transport down. Remaining pending
// operations fail with ErrAborted.
func (c *Client) Disconnect(timeout time.Duration) error {
	c.reconnCancel.Store(true)

	if !c.state.transition(StateConnected, StateDisconnecting) {
		// A connect attempt in progress aborts when it completes;
		// a reconnect cycle is cancelled.
		if !c.state.transition(StateConnecting, StateDisconnected) {
			c.state.transition(StateReconnecting, StateDisconnected)
		}
		return nil
	}

	if timeout > 0 {
		c.pending.waitSettled(timeout)
	}

	c.sendDisconnect()
	c.teardown(ErrAborted)
	c.state.set(StateDisconnected)

	return nil
}

func (c *Client) sendDisconnect() {
	pkt := &packets.Disconnect{
		FixedHeader: packets.FixedHeader{PacketType: packets.DisconnectType},
	}
	if err := c.writePacket(pkt); err != nil {
		c.logger.Debug("failed to send DISCONNECT", slog.String("error", err.Error()))
	}
}

// Close permanently closes the client, failing all pending operations
// with ErrAborted. The client rejects any further operations.
func (c *Client) Close() error {
	if c.state.isClosed() {
		return nil
	}
	c.reconnCancel.Store(true)
	c.state.set(StateClosed)
	c.teardown(ErrAborted)
	c.offline.clear(ErrAborted)
	if c.store != nil {
		c.store.Close()
	}
	c.sink.Closed()
	return nil
}

// teardown stops background goroutines, closes the transport and fails
// every pending operation with err.
func (c *Client) teardown(err error) {
	c.stopScheduler()

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	if c.readerDone != nil {
		<-c.readerDone
		c.readerDone = nil
	}

	c.pending.clear(err, nil)

	c.qos2IncomingMu.Lock()
	c.qos2Incoming = make(map[uint16]*Message)
	c.qos2IncomingMu.Unlock()
}

func (c *Client) stopScheduler() {
	if c.schedStop != nil {
		close(c.schedStop)
		c.schedDone.Wait()
		c.schedStop = nil
	}
}

// IsConnected returns true if the client is connected.
func (c *Client) IsConnected() bool {
	return c.state.isConnected()
}

// State returns the current client state.
func (c *Client) State() State {
	return c.state.get()
}

// Publish sends a message to the broker. The returned token resolves
// on transport write completion for QoS 0, on PUBACK for QoS 1 and on
// PUBCOMP for QoS 2. For persistent sessions with auto-reconnect,
// QoS > 0 publishes issued while disconnected are queued and flushed
// after the next connection; otherwise the token fails with
// ErrNotConnected.
func (c *Client) Publish(topic string, payload []byte, qos byte, retain bool) *PublishToken {
	t := &PublishToken{token: newToken()}

	if qos > 2 {
		t.complete(ErrInvalidQoS)
		return t
	}
	if err := topics.ValidateName(topic); err != nil {
		t.complete(ErrInvalidTopic)
		return t
	}
	if c.state.isClosed() {
		t.complete(ErrClientClosed)
		return t
	}

	msg := NewMessage(topic, payload, qos, retain)

	if !c.state.isConnected() {
		if qos > 0 && c.queueable() {
			if err := c.offline.push(&queuedPublish{msg: msg, token: t}); err != nil {
				t.complete(err)
			}
			return t
		}
		t.complete(ErrNotConnected)
		return t
	}

	if qos == 0 {
		t.complete(c.sendPublish(msg))
		return t
	}

	c.sendTracked(msg, t)
	return t
}

// queueable reports whether a disconnected publish may wait for the
// next connection.
func (c *Client) queueable() bool {
	return !c.opts.CleanSession && c.opts.AutoReconnect && !c.state.isClosed()
}

// sendTracked allocates a packet identifier, records the in-flight
// message and sends it.
func (c *Client) sendTracked(msg *Message, t *PublishToken) {
	packetID := c.pending.nextPacketID()
	if packetID == 0 {
		t.complete(ErrMaxInflight)
		return
	}
	msg.PacketID = packetID
	t.MessageID = packetID

	if err := c.store.StoreOutbound(packetID, msg); err != nil {
		t.complete(err)
		return
	}

	if _, err := c.pending.add(packetID, pendingPublish, msg, t.token); err != nil {
		c.store.DeleteOutbound(packetID)
		t.complete(err)
		return
	}
	t.cancel = func() {
		c.pending.complete(packetID, ErrAborted, nil)
		c.store.DeleteOutbound(packetID)
	}

	if err := c.sendPublish(msg); err != nil {
		c.pending.remove(packetID)
		c.store.DeleteOutbound(packetID)
		t.complete(err)
	}
}

// sendQueued replays an offline-queued publish on a live connection.
func (c *Client) sendQueued(item *queuedPublish) {
	c.sendTracked(item.msg, item.token)
}

func (c *Client) sendPublish(msg *Message) error {
	pkt := &packets.Publish{
		FixedHeader: packets.FixedHeader{
			PacketType: packets.PublishType,
			QoS:        msg.QoS,
			Retain:     msg.Retain,
			Dup:        msg.Dup,
		},
		TopicName: msg.Topic,
		Payload:   msg.Payload,
		ID:        msg.PacketID,
	}
	return c.writePacket(pkt)
}

// Subscribe subscribes to one or more topic filters. Inbound messages
// are delivered to the event sink.
func (c *Client) Subscribe(filters map[string]byte) *SubscribeToken {
	return c.subscribe(filters, nil)
}

// SubscribeSingle is a convenience method for subscribing to a single topic.
func (c *Client) SubscribeSingle(filter string, qos byte) *SubscribeToken {
	return c.Subscribe(map[string]byte{filter: qos})
}

// SubscribeWithHandler subscribes to a single topic filter and routes
// matching messages to the handler instead of the event sink.
func (c *Client) SubscribeWithHandler(filter string, qos byte, handler MessageHandler) *SubscribeToken {
	return c.subscribe(map[string]byte{filter: qos}, handler)
}

func (c *Client) subscribe(filters map[string]byte, handler MessageHandler) *SubscribeToken {
	t := &SubscribeToken{token: newToken()}

	if len(filters) == 0 {
		t.complete(ErrInvalidTopic)
		return t
	}
	for filter, qos := range filters {
		if qos > 2 {
			t.complete(ErrInvalidQoS)
			return t
		}
		if err := topics.ValidateFilter(filter); err != nil {
			t.complete(ErrInvalidTopic)
			return t
		}
	}
	if !c.state.isConnected() {
		t.complete(ErrNotConnected)
		return t
	}

	if err := c.sendSubscribeRequest(filters, handler, t); err != nil {
		t.complete(err)
	}

	return t
}

// sendSubscribeRequest issues a SUBSCRIBE for the given filters. A nil
// token means nobody is waiting (session resume).
func (c *Client) sendSubscribeRequest(filters map[string]byte, handler MessageHandler, t *SubscribeToken) error {
	packetID := c.pending.nextPacketID()
	if packetID == 0 {
		return ErrMaxInflight
	}

	var tok *token
	if t != nil {
		tok = t.token
	}
	op, err := c.pending.add(packetID, pendingSubscribe, nil, tok)
	if err != nil {
		return err
	}
	if t != nil {
		op.onResult = func(codes []byte) { t.ReturnCodes = codes }
	}

	ts := make([]packets.Topic, 0, len(filters))
	for filter, qos := range filters {
		ts = append(ts, packets.Topic{Name: filter, QoS: qos})
		op.topics = append(op.topics, filter)
		c.subs.set(filter, qos, handler)
	}

	pkt := &packets.Subscribe{
		FixedHeader: packets.FixedHeader{PacketType: packets.SubscribeType, QoS: 1},
		ID:          packetID,
		Topics:      ts,
	}
	if err := c.writePacket(pkt); err != nil {
		c.pending.remove(packetID)
		return err
	}

	return nil
}

// Unsubscribe unsubscribes from one or more topic filters.
func (c *Client) Unsubscribe(filters ...string) *UnsubscribeToken {
	t := &UnsubscribeToken{token: newToken()}

	if len(filters) == 0 {
		t.complete(ErrInvalidTopic)
		return t
	}
	if !c.state.isConnected() {
		t.complete(ErrNotConnected)
		return t
	}

	packetID := c.pending.nextPacketID()
	if packetID == 0 {
		t.complete(ErrMaxInflight)
		return t
	}

	op, err := c.pending.add(packetID, pendingUnsubscribe, nil, t.token)
	if err != nil {
		t.complete(err)
		return t
	}
	op.topics = filters

	pkt := &packets.Unsubscribe{
		FixedHeader: packets.FixedHeader{PacketType: packets.UnsubscribeType, QoS: 1},
		ID:          packetID,
		Topics:      filters,
	}
	if err := c.writePacket(pkt); err != nil {
		c.pending.remove(packetID)
		t.complete(err)
	}

	return t
}

// writePacket serializes writes to the transport. Reads run
// independently in the read loop; the two directions never block one
// another.
func (c *Client) writePacket(pkt packets.ControlPacket) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	defer conn.SetWriteDeadline(time.Time{})

	if err := pkt.Pack(conn); err != nil {
		return err
	}

	c.activityMu.Lock()
	c.lastSent = time.Now()
	c.activityMu.Unlock()
	return nil
}

// readLoop reads packets from the connection until it closes.
func (c *Client) readLoop() {
	done := c.readerDone
	defer close(done)

	for {
		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()

		if conn == nil {
			return
		}

		pkt, err := packets.ReadPacket(conn)
		if err != nil {
			if c.state.get() != StateConnected {
				// Expected close during shutdown.
				return
			}
			go c.handleConnectionLost(fmt.Errorf("%w: %v", ErrConnectionLost, err))
			return
		}

		c.activityMu.Lock()
		c.lastInbound = time.Now()
		c.activityMu.Unlock()

		c.handlePacket(pkt)
	}
}

func (c *Client) handlePacket(pkt packets.ControlPacket) {
	switch pkt.Type() {
	case packets.PublishType:
		c.handlePublish(pkt.(*packets.Publish))
	case packets.PubAckType:
		c.handlePubAck(pkt.(*packets.PubAck).ID)
	case packets.PubRecType:
		c.handlePubRec(pkt.(*packets.PubRec).ID)
	case packets.PubRelType:
		c.handlePubRel(pkt.(*packets.PubRel).ID)
	case packets.PubCompType:
		c.handlePubComp(pkt.(*packets.PubComp).ID)
	case packets.SubAckType:
		c.handleSubAck(pkt.(*packets.SubAck))
	case packets.UnsubAckType:
		c.handleUnsubAck(pkt.(*packets.UnsubAck).ID)
	case packets.PingRespType:
		// Inbound activity already recorded; nothing else to do.
	default:
		c.logger.Warn("unexpected packet from broker", slog.String("type", packets.PacketNames[pkt.Type()]))
	}
}

func (c *Client) handlePublish(p *packets.Publish) {
	msg := &Message{
		Topic:     p.TopicName,
		Payload:   p.Payload,
		QoS:       p.QoS,
		Retain:    p.Retain,
		Dup:       p.Dup,
		PacketID:  p.ID,
		Timestamp: time.Now(),
	}

	switch msg.QoS {
	case 0:
		c.deliverMessage(msg)
	case 1:
		c.deliverMessage(msg)
		c.sendAck(&packets.PubAck{FixedHeader: packets.FixedHeader{PacketType: packets.PubAckType}, ID: msg.PacketID})
	case 2:
		// Defer dispatch until PUBREL so the application sees the
		// message exactly once. A duplicate PUBLISH for a recorded
		// identifier is acknowledged again but not re-recorded.
		c.qos2IncomingMu.Lock()
		_, seen := c.qos2Incoming[msg.PacketID]
		if !seen {
			c.qos2Incoming[msg.PacketID] = msg
		}
		c.qos2IncomingMu.Unlock()

		if !seen {
			if err := c.store.StoreInbound(msg.PacketID, msg); err != nil {
				c.logger.Warn("failed to persist inbound message", slog.String("error", err.Error()))
			}
		}
		c.sendAck(&packets.PubRec{FixedHeader: packets.FixedHeader{PacketType: packets.PubRecType}, ID: msg.PacketID})
	}
}

func (c *Client) deliverMessage(msg *Message) {
	if handler := c.subs.route(msg.Topic); handler != nil {
		handler(msg)
		return
	}
	c.sink.MessageReceived(msg)
}

func (c *Client) handlePubAck(packetID uint16) {
	c.store.DeleteOutbound(packetID)
	if _, ok := c.pending.complete(packetID, nil, nil); ok {
		c.sink.DeliveryComplete(packetID)
	}
}

func (c *Client) handlePubRec(packetID uint16) {
	c.pending.advance(packetID, awaitingPubComp)
	c.sendAck(&packets.PubRel{FixedHeader: packets.FixedHeader{PacketType: packets.PubRelType, QoS: 1}, ID: packetID})
}

func (c *Client) handlePubRel(packetID uint16) {
	c.qos2IncomingMu.Lock()
	msg, exists := c.qos2Incoming[packetID]
	delete(c.qos2Incoming, packetID)
	c.qos2IncomingMu.Unlock()

	if !exists {
		// Possibly persisted by a previous process run.
		msg, exists = c.store.GetInbound(packetID)
	}
	if exists && msg != nil {
		c.deliverMessage(msg)
	}
	c.store.DeleteInbound(packetID)

	c.sendAck(&packets.PubComp{FixedHeader: packets.FixedHeader{PacketType: packets.PubCompType}, ID: packetID})
}

func (c *Client) handlePubComp(packetID uint16) {
	c.store.DeleteOutbound(packetID)
	if _, ok := c.pending.complete(packetID, nil, nil); ok {
		c.sink.DeliveryComplete(packetID)
	}
}

func (c *Client) handleSubAck(p *packets.SubAck) {
	op := c.pending.get(p.ID)
	if op == nil {
		return
	}

	var err error
	var granted []string
	for i, rc := range p.ReturnCodes {
		if i >= len(op.topics) {
			break
		}
		if rc == packets.SubAckFailure {
			err = ErrSubscribeFailed
			c.subs.remove(op.topics[i])
			continue
		}
		granted = append(granted, op.topics[i])
	}

	c.pending.complete(p.ID, err, p.ReturnCodes)
	if len(granted) > 0 {
		c.sink.Subscribed(granted)
	}
}

func (c *Client) handleUnsubAck(packetID uint16) {
	op, ok := c.pending.complete(packetID, nil, nil)
	if !ok {
		return
	}
	c.subs.remove(op.topics...)
	c.sink.Unsubscribed(op.topics)
}

func (c *Client) sendAck(pkt packets.ControlPacket) {
	if err := c.writePacket(pkt); err != nil {
		c.logger.Debug("failed to send acknowledgment",
			slog.String("type", packets.PacketNames[pkt.Type()]),
			slog.String("error", err.Error()))
	}
}

// handleConnectionLost reacts to an unexpected transport close or a
// keepalive timeout. For persistent sessions, in-flight publishes stay
// recorded so retransmission resumes after reconnect; subscription
// requests cannot survive a connection and always fail.
func (c *Client) handleConnectionLost(err error) {
	if !c.state.transition(StateConnected, StateDisconnected) {
		return
	}

	c.logger.Warn("connection lost", slog.String("error", err.Error()))

	c.stopScheduler()

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	if c.opts.CleanSession {
		c.pending.clear(ErrConnectionLost, nil)
	} else {
		c.pending.clear(ErrConnectionLost, func(op *pendingOp) bool {
			return op.opType == pendingPublish
		})
	}

	c.sink.ConnectionLost(err)

	if c.opts.AutoReconnect && !c.state.isClosed() {
		go c.reconnect()
	}
}
