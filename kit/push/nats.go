package push

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

type NATSConfig struct {
	URL      string
	Name     string
	Username string
	Password string
}

type NATSTransport struct {
	conn *nats.Conn
}

func NewNATSTransport(cfg NATSConfig) (*NATSTransport, error) {
	if cfg.Name == "" {
		cfg.Name = "labrent-live"
	}
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("layer=transport component=push event=disconnected err=%v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("layer=transport component=push event=reconnected url=%s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("layer=transport component=push event=closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Printf("layer=transport component=push event=error err=%v", err)
		}),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to push server at %s: %w", cfg.URL, err)
	}
	return &NATSTransport{conn: conn}, nil
}

func (t *NATSTransport) Subscribe(subject string, handler func(data []byte)) (Subscription, error) {
	sub, err := t.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

func (t *NATSTransport) Close() {
	if t.conn != nil {
		t.conn.Close()
	}
}
