package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	msgTypeJoinRoom   = 101
	msgTypeStartGame  = 103
	msgTypeGuess      = 104
	msgTypeWordSelect = 105
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 6+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint32(packet[2:6], uint32(len(data)))
	copy(packet[6:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendJSON(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return send(c, msgID, data)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:8000", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 6 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[6:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	name := "tester"
	if len(os.Args) > 1 {
		name = os.Args[1]
	}

	log.Println("Creating a room...")
	if err := sendJSON(c, msgTypeJoinRoom, map[string]interface{}{
		"create":   true,
		"name":     name,
		"language": "English",
		"clientId": "cli-" + name,
	}); err != nil {
		log.Println("Write error:", err)
		return
	}

	log.Println("Commands: join <roomId> | start | select <word> | guess <text>")

	// Write loop
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupted, closing connection")
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		default:
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}

			var sendErr error
			switch fields[0] {
			case "join":
				if len(fields) < 2 {
					log.Println("Usage: join <roomId>")
					continue
				}
				sendErr = sendJSON(c, msgTypeJoinRoom, map[string]interface{}{
					"roomId":   fields[1],
					"name":     name,
					"language": "English",
					"clientId": "cli-" + name,
				})
			case "start":
				sendErr = send(c, msgTypeStartGame, nil)
			case "select":
				if len(fields) < 2 {
					log.Println("Usage: select <word>")
					continue
				}
				sendErr = sendJSON(c, msgTypeWordSelect, map[string]string{"word": fields[1]})
			case "guess":
				sendErr = sendJSON(c, msgTypeGuess, map[string]string{
					"guess": strings.Join(fields[1:], " "),
				})
			default:
				log.Println("Unknown command:", fields[0])
				continue
			}
			if sendErr != nil {
				log.Println("Write error:", sendErr)
				return
			}
		}
	}
}
