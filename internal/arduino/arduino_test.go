package arduino

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"ropebot/internal/logger"
)

// fakePort пишет команды в буфер и отдает заранее заданные ответы
type fakePort struct {
	written bytes.Buffer
	replies *strings.Reader
}

func (p *fakePort) Write(b []byte) (int, error) { return p.written.Write(b) }
func (p *fakePort) Read(b []byte) (int, error)  { return p.replies.Read(b) }

func TestKeyDownUp(t *testing.T) {
	port := &fakePort{replies: strings.NewReader("received\r\nreceived\n")}
	m := NewArduinoManager(port, logger.Discard())

	if err := m.KeyDown("left"); err != nil {
		t.Fatal(err)
	}
	if err := m.KeyUp("left"); err != nil {
		t.Fatal(err)
	}
	if got := port.written.String(); got != "key_down:left\nkey_up:left\n" {
		t.Errorf("written = %q", got)
	}
}

func TestUnexpectedResponse(t *testing.T) {
	port := &fakePort{replies: strings.NewReader("error\n")}
	m := NewArduinoManager(port, logger.Discard())
	if err := m.KeyDown("x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestWaitForArduinoResponseIncompleteLine(t *testing.T) {
	if _, err := WaitForArduinoResponse(bufio.NewReader(strings.NewReader("rec")), "received"); err == nil {
		t.Error("incomplete line must fail once the port is drained")
	}
}
