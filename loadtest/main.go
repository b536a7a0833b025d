package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type stats struct {
	signups  atomic.Int64
	logins   atomic.Int64
	limited  atomic.Int64
	sent     atomic.Int64
	received atomic.Int64
	failures atomic.Int64
}

func main() {
	baseURL := flag.String("base", "http://localhost:3000", "server base url")
	wsURL := flag.String("ws", "ws://localhost:3000/ws", "websocket url")
	users := flag.Int("users", 50, "number of concurrent users")
	msgs := flag.Int("msgs", 20, "messages sent per user")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()

	log.Info("starting load test", zap.Int("users", *users), zap.Int("msgs", *msgs))

	var st stats
	run := uuid.NewString()[:8]
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *users; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			username := fmt.Sprintf("lt_%s_%d", run, n)
			if !authenticate(log, *baseURL, username, &st) {
				st.failures.Add(1)
				return
			}
			chat(log, *wsURL, username, *msgs, &st)
		}(i)
	}
	wg.Wait()

	log.Info("load test complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("signups", st.signups.Load()),
		zap.Int64("logins", st.logins.Load()),
		zap.Int64("rate_limited", st.limited.Load()),
		zap.Int64("sent", st.sent.Load()),
		zap.Int64("received", st.received.Load()),
		zap.Int64("failures", st.failures.Load()),
	)
}

// authenticate signs up username and logs in with it.
func authenticate(log *zap.Logger, baseURL, username string, st *stats) bool {
	const password = "password123"

	resp, err := postJSON(baseURL+"/signup", map[string]string{
		"username":    username,
		"password":    password,
		"contact":     username + "@example.com",
		"contactType": "email",
	})
	if err != nil {
		log.Warn("signup failed", zap.String("user", username), zap.Error(err))
		return false
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		log.Warn("signup rejected", zap.String("user", username), zap.Int("status", resp.StatusCode))
		return false
	}
	st.signups.Add(1)

	resp, err = postJSON(baseURL+"/login", map[string]string{"identifier": username, "password": password})
	if err != nil {
		log.Warn("login failed", zap.String("user", username), zap.Error(err))
		return false
	}
	_ = resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		st.logins.Add(1)
		return true
	case http.StatusTooManyRequests:
		st.limited.Add(1)
		return true
	default:
		log.Warn("login rejected", zap.String("user", username), zap.Int("status", resp.StatusCode))
		return false
	}
}

// chat sends msgs message events and counts every frame that comes back
// until the connection has been quiet for a second.
func chat(log *zap.Logger, wsURL, username string, msgs int, st *stats) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Warn("ws connect failed", zap.String("user", username), zap.Error(err))
		st.failures.Add(1)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			st.received.Add(1)
		}
	}()

	for i := 0; i < msgs; i++ {
		frame := map[string]any{
			"event": "message",
			"data":  map[string]any{"from": username, "seq": i},
		}
		if err := conn.WriteJSON(frame); err != nil {
			log.Warn("send failed", zap.String("user", username), zap.Error(err))
			break
		}
		st.sent.Add(1)
		time.Sleep(10 * time.Millisecond)
	}
	<-done
}

func postJSON(url string, data any) (*http.Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return http.Post(url, "application/json", bytes.NewReader(body))
}
