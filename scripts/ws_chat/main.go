package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/nodeworld/nodeworld-live/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	server := flag.String("server", "http://localhost:4000", "server base URL")
	node := flag.String("node", "plaza", "node to join")
	token := flag.String("token", "", "visitor session token (empty for anonymous)")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
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

	fmt.Printf("Connected to node %s on %s\n", *node, *server)
	fmt.Println("Type to chat, /me <text> to emote, /login and /logout to switch access. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *server, *node, *token)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch outbound.Event {
		case proto.OutboundEventMessage:
			raw, err := json.Marshal(outbound.Data)
			if err != nil {
				log.Printf("marshal outbound data: %v", err)
				continue
			}
			var msg proto.Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			switch msg.Type {
			case 1:
				fmt.Printf("%s: %s\n", msg.Name, msg.Content)
			case 2:
				fmt.Printf("* %s %s\n", msg.Name, msg.Content)
			default:
				fmt.Printf("-- %s\n", msg.Content)
			}
		case proto.OutboundEventVisitors:
			raw, err := json.Marshal(outbound.Data)
			if err != nil {
				log.Printf("marshal outbound data: %v", err)
				continue
			}
			var visitors []proto.Visitor
			if err := json.Unmarshal(raw, &visitors); err != nil {
				log.Printf("unmarshal visitors: %v", err)
				continue
			}
			names := make([]string, 0, len(visitors))
			for _, v := range visitors {
				names = append(names, v.Name)
			}
			fmt.Printf("-- visitors: [%s]\n", strings.Join(names, ", "))
		case proto.OutboundEventJoined:
			fmt.Println("-- joined")
		default:
			fmt.Printf("event=%s data=%v\n", outbound.Event, outbound.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, server, node, token string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			switch text {
			case "/login":
				if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeLogin}); err != nil {
					log.Printf("send error: %v", err)
					return
				}
			case "/logout":
				if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeLogout}); err != nil {
					log.Printf("send error: %v", err)
					return
				}
			default:
				if err := publish(ctx, server, node, token, text); err != nil {
					log.Printf("publish error: %v", err)
				}
			}
		}
	}
}

// publish posts the line to the message API; the relay consumer loops it
// back through the shared queue.
func publish(ctx context.Context, server, node, token, content string) error {
	body, err := json.Marshal(map[string]string{"node": node, "content": content})
	if err != nil {
		return err
	}

	req, err := stdhttp.NewRequestWithContext(ctx, stdhttp.MethodPost, server+"/api/messages", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := stdhttp.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != stdhttp.StatusAccepted {
		return fmt.Errorf("publish returned status %d", resp.StatusCode)
	}
	return nil
}
