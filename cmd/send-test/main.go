package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/rsdeals/discord-bridge/internal/data"
)

func main() {
	_ = godotenv.Load()

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		fmt.Println("Error: DISCORD_TOKEN must be set")
		os.Exit(1)
	}

	if len(os.Args) < 3 {
		fmt.Println("Usage: send-test <channel_id> <message>")
		os.Exit(1)
	}

	channelID, err := strconv.ParseInt(os.Args[1], 10, 64)
	if err != nil {
		fmt.Printf("Error: invalid channel id %q\n", os.Args[1])
		os.Exit(1)
	}
	message := os.Args[2]

	channels := data.NewChannelRepo(token)
	msgID, err := channels.SendMessage(context.Background(), channelID, message, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Message sent successfully (id %s)\n", msgID)
}
