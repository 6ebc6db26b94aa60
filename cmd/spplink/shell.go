package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Gajda90/AndroidMouse/pkg/command"
	"github.com/Gajda90/AndroidMouse/pkg/config"
	"github.com/Gajda90/AndroidMouse/pkg/link"
)

var errQuit = errors.New("quit")

const usage = `commands:
  connect [peer]   connect to a peer by name or address
  cancel           drop the connection or pending attempt
  state            print the current state
  move DX DY       send a relative move
  down X Y         start a touch at X,Y
  to X Y           move the touch to X,Y
  up               end the touch
  left | right     send a click
  raw TEXT         send TEXT followed by a newline
  quit`

// shell interprets one command per input line.
type shell struct {
	cfg     *config.Config
	mgr     *link.Manager
	codec   command.Codec
	out     io.Writer
	pointer command.Pointer
}

func (s *shell) loop(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		err := s.exec(sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
	}
	return sc.Err()
}

func (s *shell) exec(line string) error {
	f := strings.Fields(line)
	if len(f) == 0 {
		return nil
	}
	switch strings.ToLower(f[0]) {
	case "connect":
		peer, err := s.cfg.Peer(strings.Join(f[1:], " "))
		if err != nil {
			return err
		}
		s.mgr.Connect(peer)
	case "cancel":
		s.mgr.Cancel()
	case "state":
		fmt.Fprintln(s.out, s.mgr.State())
	case "move":
		dx, dy, err := pair(f)
		if err != nil {
			return err
		}
		if err := command.CheckDelta(dx); err != nil {
			return err
		}
		if err := command.CheckDelta(dy); err != nil {
			return err
		}
		return s.send(command.MoveBy(int(dx), int(dy)))
	case "down":
		x, y, err := pair(f)
		if err != nil {
			return err
		}
		s.pointer.Down(x, y)
	case "to":
		x, y, err := pair(f)
		if err != nil {
			return err
		}
		if err := command.CheckDelta(x); err != nil {
			return err
		}
		if err := command.CheckDelta(y); err != nil {
			return err
		}
		if c, ok := s.pointer.Move(x, y); ok {
			return s.send(c)
		}
		return errors.New("no touch in progress")
	case "up":
		s.pointer.Up()
	case "left":
		return s.send(command.LeftClick())
	case "right":
		return s.send(command.RightClick())
	case "raw":
		s.mgr.Write([]byte(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), f[0])) + "\n"))
	case "help", "?":
		fmt.Fprintln(s.out, usage)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", f[0])
	}
	return nil
}

func (s *shell) send(c command.Command) error {
	b, err := s.codec.Encode(c)
	if err != nil {
		return err
	}
	s.mgr.Write(b)
	return nil
}

func pair(f []string) (float64, float64, error) {
	if len(f) != 3 {
		return 0, 0, fmt.Errorf("%s: want two numbers", f[0])
	}
	a, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", f[0], err)
	}
	b, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", f[0], err)
	}
	return a, b, nil
}
