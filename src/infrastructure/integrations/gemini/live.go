package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gorilla/websocket"

	"aipod/src/log"
	"aipod/src/speech"
)

// liveEndpoint is the bidirectional generation websocket of the Gemini
// Live API. The API key is appended as a query parameter.
const liveEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContent?key="

type liveSetup struct {
	Setup struct {
		Model            string     `json:"model"`
		GenerationConfig liveGenCfg `json:"generationConfig"`
	} `json:"setup"`
}

type liveGenCfg struct {
	ResponseModalities []string `json:"responseModalities"`
	SpeechConfig       struct {
		VoiceConfig struct {
			PrebuiltVoiceConfig struct {
				VoiceName string `json:"voiceName"`
			} `json:"prebuiltVoiceConfig"`
		} `json:"voiceConfig"`
	} `json:"speechConfig"`
}

type liveTextPart struct {
	Text string `json:"text"`
}

type liveTurn struct {
	Role  string         `json:"role"`
	Parts []liveTextPart `json:"parts"`
}

type liveClientContent struct {
	ClientContent struct {
		Turns        []liveTurn `json:"turns"`
		TurnComplete bool       `json:"turnComplete"`
	} `json:"clientContent"`
}

type liveServerMessage struct {
	SetupComplete *struct{} `json:"setupComplete,omitempty"`
	ServerContent *struct {
		ModelTurn *struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     []byte `json:"data"`
				} `json:"inlineData,omitempty"`
			} `json:"parts"`
		} `json:"modelTurn,omitempty"`
		TurnComplete bool `json:"turnComplete,omitempty"`
	} `json:"serverContent,omitempty"`
}

// Speak opens a live session configured for audio output, sends the text
// as a single completed turn, and returns a stream of PCM chunks.
func (c *Client) Speak(ctx context.Context, voice, text string) (speech.Stream, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, liveEndpoint+c.apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial live endpoint: %v", err)
	}

	var setup liveSetup
	setup.Setup.Model = c.audioModel
	setup.Setup.GenerationConfig.ResponseModalities = []string{"AUDIO"}
	setup.Setup.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName = voice
	if err := conn.WriteJSON(setup); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send setup: %v", err)
	}

	// The server acknowledges setup before accepting content.
	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read setup response: %v", err)
	}
	var ack liveServerMessage
	if err := json.Unmarshal(data, &ack); err != nil || ack.SetupComplete == nil {
		conn.Close()
		return nil, fmt.Errorf("unexpected setup response: %s", data)
	}

	var content liveClientContent
	content.ClientContent.Turns = []liveTurn{{
		Role:  "user",
		Parts: []liveTextPart{{Text: text}},
	}}
	content.ClientContent.TurnComplete = true
	if err := conn.WriteJSON(content); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send content: %v", err)
	}

	log.Debug("live session opened", "voice", voice, "text_chars", len(text))
	return &liveStream{conn: conn}, nil
}

// liveStream reads model turn audio until the server signals turn
// completion or closes the connection.
type liveStream struct {
	conn    *websocket.Conn
	pending [][]byte
	done    bool
}

func (s *liveStream) Recv() ([]byte, error) {
	for {
		if len(s.pending) > 0 {
			chunk := s.pending[0]
			s.pending = s.pending[1:]
			return chunk, nil
		}
		if s.done {
			return nil, io.EOF
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("failed to read live message: %v", err)
		}

		var msg liveServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to decode live message: %v", err)
		}
		if msg.ServerContent == nil {
			continue
		}
		if msg.ServerContent.ModelTurn != nil {
			for _, part := range msg.ServerContent.ModelTurn.Parts {
				if part.InlineData != nil && len(part.InlineData.Data) > 0 {
					s.pending = append(s.pending, part.InlineData.Data)
				}
			}
		}
		if msg.ServerContent.TurnComplete {
			s.done = true
		}
	}
}

func (s *liveStream) Close() error {
	s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return s.conn.Close()
}
