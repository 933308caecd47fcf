package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"looknest/internal/event"
	"looknest/pkg/pushclient"
)

// pushprobe 连接推送通道并打印收到的事件 用于联调与排查
func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "WebSocket URL of the push endpoint")
	token := flag.String("token", "", "JWT to authenticate with after connecting")
	maxAttempts := flag.Int("max-attempts", 5, "Connection attempts before giving up")
	retryDelay := flag.Duration("retry-delay", 3*time.Second, "Delay between reconnection attempts")
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "Missing -token; obtain one via POST /api/auth/login")
		os.Exit(1)
	}

	agent := pushclient.NewAgent(*url, pushclient.Options{
		Token:       *token,
		MaxAttempts: *maxAttempts,
		RetryDelay:  *retryDelay,
		OnStateChange: func(s pushclient.State) {
			fmt.Printf("[%s] state: %s\n", time.Now().Format(time.RFC3339), s)
			if s == pushclient.StateGivenUp {
				fmt.Fprintln(os.Stderr, "Gave up reconnecting")
				os.Exit(1)
			}
		},
	})

	agent.Subscribe(func(ev event.Event) {
		fmt.Printf("[%s] event: %s\n", time.Now().Format(time.RFC3339), ev.Type)
	})

	agent.Start()
	defer agent.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println("Shutting down")
}
