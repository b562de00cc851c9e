package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ErrTransactionFailed is returned when a confirmed transaction carries an
// on-chain error.
var ErrTransactionFailed = errors.New("transaction failed on chain")

// ConfirmerConfig configures WebSocket confirmation behavior.
type ConfirmerConfig struct {
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration
	// WriteTimeout is the write deadline for subscribe requests.
	WriteTimeout time.Duration
	// PollInterval is the fallback polling period when the WebSocket
	// endpoint is unavailable.
	PollInterval time.Duration
}

// DefaultConfirmerConfig returns default confirmation configuration.
func DefaultConfirmerConfig() ConfirmerConfig {
	return ConfirmerConfig{
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
		PollInterval: 2 * time.Second,
	}
}

// Confirmer waits for a submitted transaction to reach the "confirmed"
// commitment. It prefers a signatureSubscribe over WebSocket and falls back
// to polling getSignatureStatuses when no WS endpoint is configured or the
// dial fails.
type Confirmer struct {
	wsEndpoint string
	rpc        RPCClient
	config     ConfirmerConfig
	requestID  atomic.Uint64
}

// NewConfirmer creates a Confirmer. wsEndpoint may be empty to force the
// polling path.
func NewConfirmer(wsEndpoint string, rpc RPCClient, config *ConfirmerConfig) *Confirmer {
	cfg := DefaultConfirmerConfig()
	if config != nil {
		cfg = *config
	}
	return &Confirmer{
		wsEndpoint: wsEndpoint,
		rpc:        rpc,
		config:     cfg,
	}
}

// Confirm blocks until the signature is confirmed, fails on chain, or the
// context ends.
func (c *Confirmer) Confirm(ctx context.Context, signature string) error {
	if c.wsEndpoint != "" {
		err := c.confirmWS(ctx, signature)
		if err == nil || errors.Is(err, ErrTransactionFailed) || ctx.Err() != nil {
			return err
		}
		// WS path broke mid-wait; the poll path resolves the same state.
	}
	return c.confirmPoll(ctx, signature)
}

// signatureNotification is the params payload of a signatureNotification.
type signatureNotification struct {
	Subscription int64 `json:"subscription"`
	Result       struct {
		Value struct {
			Err interface{} `json:"err"`
		} `json:"value"`
	} `json:"result"`
}

// wsMessage is the superset of frames the confirmation flow sees.
type wsMessage struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Error  *rpcError       `json:"error"`
}

// confirmWS subscribes for the signature and waits for its notification.
// The subscription auto-cancels server-side once the notification fires.
func (c *Confirmer) confirmWS(ctx context.Context, signature string) error {
	dialer := websocket.Dialer{HandshakeTimeout: c.config.WriteTimeout}
	conn, _, err := dialer.DialContext(ctx, c.wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("dial websocket: %w", err)
	}
	defer conn.Close()

	// Unblock the read loop when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	reqID := c.requestID.Add(1)
	sub := rpcRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "signatureSubscribe",
		Params: []interface{}{
			signature,
			map[string]interface{}{"commitment": "confirmed"},
		},
	}

	conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}

	for {
		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		if msg.ID == reqID && msg.Error != nil {
			return fmt.Errorf("subscribe failed: %w", msg.Error)
		}

		if msg.Method != "signatureNotification" {
			continue
		}

		var note signatureNotification
		if err := json.Unmarshal(msg.Params, &note); err != nil {
			continue
		}
		if note.Result.Value.Err != nil {
			return fmt.Errorf("%w: %v", ErrTransactionFailed, note.Result.Value.Err)
		}
		return nil
	}
}

// confirmPoll polls getSignatureStatuses until the signature confirms.
func (c *Confirmer) confirmPoll(ctx context.Context, signature string) error {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		statuses, err := c.rpc.GetSignatureStatuses(ctx, []string{signature})
		if err == nil && len(statuses) > 0 && statuses[0] != nil {
			status := statuses[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
			}
			if status.ConfirmationStatus == "confirmed" || status.ConfirmationStatus == "finalized" {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
