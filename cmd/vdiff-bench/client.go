package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"hash/fnv"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/vdiff/pkg/protocol"
	"github.com/vango-dev/vdiff/pkg/snapshot"
	"github.com/vango-dev/vdiff/pkg/vdom"
)

var errTokenMissing = stderrors.New("token not observed in patches")

// client is one benchmark stream.
type client struct {
	id       int
	cfg      benchConfig
	counters *benchCounters
	errs     *benchErrors
	ops      *patchOpCounts
	samples  chan<- time.Duration
}

func (c *client) run(ctx context.Context, wsURL string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		c.errs.dialFailures.Add(1)
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	page := newLoadPage(c.cfg.ListSize)

	// The first reply replaces the empty tree and carries no token.
	if err := c.send(conn, page); err != nil {
		return err
	}
	conn.SetReadDeadline(time.Now().Add(c.cfg.SnapshotTimeout))
	if _, err := c.readPatches(conn); err != nil {
		return err
	}

	period := time.Duration(float64(time.Second) / c.cfg.RPS)
	var seq uint64
	for {
		if ctx.Err() != nil {
			return nil
		}

		seq++
		token := makeToken(c.id, seq, c.cfg.PayloadBytes)
		start := time.Now()

		page.input(token)
		if err := c.send(conn, page); err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(c.cfg.SnapshotTimeout))
		pf, err := c.readPatches(conn)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if isTimeout(err) {
				c.errs.tokenMissing.Add(1)
				return errTokenMissing
			}
			return err
		}
		if !carriesText(pf, token) {
			c.errs.tokenMissing.Add(1)
			return errTokenMissing
		}

		c.counters.snapshotsComplete.Add(1)
		c.samples <- time.Since(start)

		if sleep := period - time.Since(start); sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case <-timer.C:
			}
		}
	}
}

// send writes the page as a FrameSnapshot frame.
func (c *client) send(conn *websocket.Conn, page *loadPage) error {
	doc, err := page.snapshot()
	if err != nil {
		return err
	}
	frame, err := protocol.CompressFrame(protocol.FrameSnapshot, doc, c.cfg.CompressThreshold)
	if err != nil {
		return err
	}
	data, err := frame.Encode()
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.errs.writeFailures.Add(1)
		return fmt.Errorf("snapshot write: %w", err)
	}
	c.counters.snapshotsSent.Add(1)
	c.counters.snapshotBytes.Add(uint64(len(data)))
	return nil
}

// readPatches reads the reply to one snapshot.
func (c *client) readPatches(conn *websocket.Conn) (*protocol.PatchesFrame, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		c.errs.frameDecodeFailures.Add(1)
		return nil, err
	}

	switch frame.Type {
	case protocol.FramePatches:
	case protocol.FrameError:
		c.errs.serverErrorFrames.Add(1)
		if em, err := protocol.DecodeErrorMessage(frame.Payload); err == nil {
			return nil, em
		}
		return nil, stderrors.New("server error frame")
	default:
		c.errs.frameDecodeFailures.Add(1)
		return nil, fmt.Errorf("unexpected %s frame", frame.Type)
	}

	payload, err := frame.Data()
	if err != nil {
		c.errs.frameDecodeFailures.Add(1)
		return nil, err
	}
	pf, err := protocol.DecodePatches(payload)
	if err != nil {
		c.errs.patchDecodeFailures.Add(1)
		return nil, err
	}

	c.counters.patchFrames.Add(1)
	c.counters.patchBytes.Add(uint64(len(msg)))
	for _, p := range pf.Patches {
		c.ops.add(p.Op)
	}
	c.counters.patchesTotal.Add(uint64(len(pf.Patches)))
	return pf, nil
}

// carriesText reports whether a ChangeText patch sets text to token.
func carriesText(pf *protocol.PatchesFrame, token string) bool {
	for _, p := range pf.Patches {
		if p.Op == protocol.PatchChangeText && p.NewText == token {
			return true
		}
	}
	return false
}

func makeToken(clientID int, seq uint64, payloadBytes int) string {
	seed := (uint64(clientID) << 32) ^ seq
	base := strconv.FormatUint(seed, 36)
	if len(base) >= payloadBytes {
		return base[len(base)-payloadBytes:]
	}
	return base + strings.Repeat("x", payloadBytes-len(base))
}

func isTimeout(err error) bool {
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// loadPage is the tree a benchmark client edits: typing a value echoes it
// and overwrites one list item picked by the value's hash.
type loadPage struct {
	reg     *snapshot.Registry
	onInput vdom.Callback
	echo    string
	items   []string
}

func newLoadPage(listSize int) *loadPage {
	p := &loadPage{
		reg:     snapshot.NewRegistry(),
		onInput: vdom.NewCallback(func(vdom.Event) {}),
		items:   make([]string, listSize),
	}
	p.reg.Register("input", p.onInput)
	for i := range p.items {
		p.items[i] = fmt.Sprintf("Item %d", i)
	}
	return p
}

func (p *loadPage) input(value string) {
	p.echo = value
	if len(p.items) > 0 {
		h := fnv.New32a()
		h.Write([]byte(value))
		p.items[h.Sum32()%uint32(len(p.items))] = value
	}
}

func (p *loadPage) render() *vdom.VNode {
	items := make([]any, len(p.items))
	for i, it := range p.items {
		items[i] = vdom.Li(vdom.Key(i), vdom.Text(it))
	}
	return vdom.Div(
		vdom.Input(vdom.Type("text"), vdom.OnInput(p.onInput)),
		vdom.Div(vdom.ID("echo"), vdom.Text(p.echo)),
		vdom.Ul(items...),
	)
}

func (p *loadPage) snapshot() ([]byte, error) {
	return snapshot.Encode(p.render(), p.reg)
}
