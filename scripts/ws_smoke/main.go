package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/nodeworld/nodeworld-live/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

// run joins a node, publishes one chat line through the message API, and
// waits for it to come back through the relay.
func run() error {
	server := flag.String("server", "http://localhost:4000", "server base URL")
	node := flag.String("node", "plaza", "node name")
	token := flag.String("token", "", "visitor session token")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	wsURL := strings.Replace(*server, "http", "ws", 1) + "/live/" + *node
	opts := &websocket.DialOptions{}
	if *token != "" {
		header := stdhttp.Header{}
		header.Set("Authorization", "Bearer "+*token)
		opts.HTTPHeader = header
	}

	conn, _, err := websocket.Dial(ctx, wsURL, opts)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	// Wait for the connection protocol to finish before publishing.
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Printf("Received event=%s\n", outbound.Event)
		if outbound.Event == proto.OutboundEventJoined {
			break
		}
	}

	body, err := json.Marshal(map[string]string{"node": *node, "content": *text})
	if err != nil {
		return fmt.Errorf("marshal publish body: %w", err)
	}
	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodPost, *server+"/api/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}
	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode != stdhttp.StatusAccepted {
		return fmt.Errorf("publish returned status %d", resp.StatusCode)
	}

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if outbound.Event != proto.OutboundEventMessage {
			continue
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			return fmt.Errorf("marshal outbound data: %w", err)
		}
		var msg proto.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("unmarshal message: %w", err)
		}
		if msg.Type == 1 && msg.Content == *text {
			fmt.Printf("Relayed: %s: %q\n", msg.Name, msg.Content)
			return nil
		}
	}
}
