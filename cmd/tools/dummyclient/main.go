package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log"

	"volgrader/internal/client"
	"volgrader/pkg/listener"
)

func main() {
	network := flag.String("network", listener.NetworkTCP, "Grader network: tcp|unix")
	addr := flag.String("addr", "127.0.0.1:12345", "Grader address")
	user := flag.String("user", "dummy", "User name")
	password := flag.String("password", "", "Password, sent as a sha256 hex digest")
	instrument := flag.String("instrument", "TEA", "Instrument to predict volatility for")
	window := flag.Int("window", 100, "Rolling window of mid-prices")
	flag.Parse()

	c, err := client.Dial(*network, *addr)
	if err != nil {
		log.Fatalf("connect failed: %v", err)
	}
	defer c.Close()

	sum := sha256.Sum256([]byte(*password))
	if err := c.Login(*user, hex.EncodeToString(sum[:])); err != nil {
		log.Fatalf("login failed: %v", err)
	}

	score, stats, err := c.Play(client.NewRollingStd(*instrument, *window))
	if err != nil {
		log.Fatalf("session failed after %d orderbooks, %d predictions: %v", stats.OrderBooks, stats.Predictions, err)
	}
	log.Printf("score %.3f, %d messages in %.3f sec, %d orderbooks seen, %d predictions sent",
		score.Score, score.Sent, score.Elapsed, stats.OrderBooks, stats.Predictions)
}
