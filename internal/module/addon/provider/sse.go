package provider

import (
	"bufio"
	"io"
	"strings"
)

// sseTerminator is the sentinel data payload ending an OpenAI-style
// event stream.
const sseTerminator = "[DONE]"

// scanSSE reads "data:" lines from an event stream and invokes emit
// for each payload until the terminator, EOF, or an emit error.
func scanSSE(r io.Reader, emit func(data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == sseTerminator {
			return nil
		}

		if err := emit(data); err != nil {
			return err
		}
	}
	return scanner.Err()
}
