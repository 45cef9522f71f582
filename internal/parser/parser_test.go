package parser

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	unit, err := Parse("test.ssn", []byte(src))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return unit
}

func parseOneProtocol(t *testing.T, src string) *Node {
	t.Helper()
	unit := mustParse(t, src)
	protos := unit.Protocols()
	if len(protos) != 1 {
		t.Fatalf("expected 1 protocol, got %d", len(protos))
	}
	return protos[0]
}

func TestParseStraightLine(t *testing.T) {
	proto := parseOneProtocol(t, `
protocol Ping {
    send Ping;
    recv Pong;
    end;
}
`)
	if proto.Name != "Ping" {
		t.Errorf("protocol name = %q, want Ping", proto.Name)
	}
	if len(proto.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(proto.Body))
	}

	wantTypes := []NodeType{NodeSend, NodeRecv, NodeEnd}
	wantNames := []string{"Ping", "Pong", ""}
	for i, stmt := range proto.Body {
		if stmt.Type != wantTypes[i] {
			t.Errorf("statement %d type = %s, want %s", i, stmt.Type, wantTypes[i])
		}
		if stmt.Name != wantNames[i] {
			t.Errorf("statement %d name = %q, want %q", i, stmt.Name, wantNames[i])
		}
	}
}

func TestParseQualifiedTypeNames(t *testing.T) {
	proto := parseOneProtocol(t, `
protocol Transfer {
    send bytes.Chunk;
}
`)
	if proto.Body[0].Name != "bytes.Chunk" {
		t.Errorf("type name = %q, want bytes.Chunk", proto.Body[0].Name)
	}
}

func TestParseLoopWithLabel(t *testing.T) {
	proto := parseOneProtocol(t, `
protocol Stream {
    loop outer {
        loop {
            break outer;
        }
        continue;
    }
}
`)
	outer := proto.Body[0]
	if outer.Type != NodeLoop || outer.Name != "outer" {
		t.Fatalf("expected labeled loop, got %s %q", outer.Type, outer.Name)
	}

	inner := outer.Body[0]
	if inner.Type != NodeLoop || inner.Name != "" {
		t.Fatalf("expected unlabeled loop, got %s %q", inner.Type, inner.Name)
	}

	brk := inner.Body[0]
	if brk.Type != NodeBreak || brk.Name != "outer" {
		t.Errorf("expected break outer, got %s %q", brk.Type, brk.Name)
	}

	cont := outer.Body[1]
	if cont.Type != NodeContinue || cont.Name != "" {
		t.Errorf("expected bare continue, got %s %q", cont.Type, cont.Name)
	}
}

func TestParseChooseBranches(t *testing.T) {
	proto := parseOneProtocol(t, `
protocol Menu {
    choose {
        { send A; }
        { send B; recv C; }
        { }
    }
}
`)
	choose := proto.Body[0]
	if choose.Type != NodeChoose {
		t.Fatalf("expected choose, got %s", choose.Type)
	}
	if len(choose.Branches) != 3 {
		t.Fatalf("expected 3 branches, got %d", len(choose.Branches))
	}
	if len(choose.Branches[0].Body) != 1 {
		t.Errorf("branch 0 should have 1 statement, got %d", len(choose.Branches[0].Body))
	}
	if len(choose.Branches[1].Body) != 2 {
		t.Errorf("branch 1 should have 2 statements, got %d", len(choose.Branches[1].Body))
	}
	if len(choose.Branches[2].Body) != 0 {
		t.Errorf("branch 2 should be empty, got %d statements", len(choose.Branches[2].Body))
	}
}

func TestParseOffer(t *testing.T) {
	proto := parseOneProtocol(t, `
protocol Server {
    offer {
        { recv Get; send Item; }
        { recv Quit; }
    }
}
`)
	offer := proto.Body[0]
	if offer.Type != NodeOffer {
		t.Fatalf("expected offer, got %s", offer.Type)
	}
	if len(offer.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(offer.Branches))
	}
}

func TestParseSplitHalves(t *testing.T) {
	proto := parseOneProtocol(t, `
protocol Duplex {
    split {
        tx { send Data; }
        rx { recv Ack; }
    }
}
`)
	split := proto.Body[0]
	if split.Type != NodeSplit {
		t.Fatalf("expected split, got %s", split.Type)
	}
	if split.Tx == nil || len(split.Tx.Body) != 1 {
		t.Error("tx half missing or wrong size")
	}
	if split.Rx == nil || len(split.Rx.Body) != 1 {
		t.Error("rx half missing or wrong size")
	}
}

func TestParseSplitHalfOmitted(t *testing.T) {
	proto := parseOneProtocol(t, `
protocol TxOnly {
    split {
        tx { send Data; }
    }
}
`)
	split := proto.Body[0]
	if split.Tx == nil {
		t.Error("tx half should be present")
	}
	if split.Rx != nil {
		t.Error("rx half should be nil when omitted")
	}
}

func TestParseMultipleProtocols(t *testing.T) {
	unit := mustParse(t, `
protocol First {
    send A;
}

protocol Second {
    call First;
}
`)
	protos := unit.Protocols()
	if len(protos) != 2 {
		t.Fatalf("expected 2 protocols, got %d", len(protos))
	}
	if protos[0].Name != "First" || protos[1].Name != "Second" {
		t.Errorf("protocol names = %q, %q", protos[0].Name, protos[1].Name)
	}
	if protos[1].Body[0].Type != NodeCall || protos[1].Body[0].Name != "First" {
		t.Errorf("expected call First, got %s %q", protos[1].Body[0].Type, protos[1].Body[0].Name)
	}
}

func TestParseComments(t *testing.T) {
	proto := parseOneProtocol(t, `
// leading comment
protocol Ping {
    send Ping; // trailing comment
    // a full-line comment
    recv Pong;
}
`)
	if len(proto.Body) != 2 {
		t.Errorf("comments should be skipped, got %d statements", len(proto.Body))
	}
}

func TestParseLocations(t *testing.T) {
	proto := parseOneProtocol(t, "protocol Ping {\n    send Ping;\n}\n")

	if proto.Location.StartLine != 1 {
		t.Errorf("protocol start line = %d, want 1", proto.Location.StartLine)
	}
	if proto.Location.File != "test.ssn" {
		t.Errorf("protocol file = %q, want test.ssn", proto.Location.File)
	}

	send := proto.Body[0]
	if send.Location.StartLine != 2 || send.Location.StartCol != 5 {
		t.Errorf("send location = %d:%d, want 2:5", send.Location.StartLine, send.Location.StartCol)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing semicolon", "protocol P { send A }", "expected ';'"},
		{"missing brace", "protocol P { send A;", "unexpected end of file"},
		{"missing type", "protocol P { send ; }", "expected identifier"},
		{"empty choose", "protocol P { choose { } }", "at least one branch"},
		{"duplicate tx", "protocol P { split { tx { } tx { } } }", "duplicate tx"},
		{"duplicate rx", "protocol P { split { rx { } rx { } } }", "duplicate rx"},
		{"stray token", "protocol P { ; }", "expected statement"},
		{"bad character", "protocol P { send A@; }", "unexpected character"},
		{"not a protocol", "loop { }", `expected "protocol"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.ssn", []byte(tt.src))
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParseErrorHasPosition(t *testing.T) {
	_, err := Parse("bad.ssn", []byte("protocol P {\n    send A\n}\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}

	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.File != "bad.ssn" {
		t.Errorf("error file = %q, want bad.ssn", perr.File)
	}
	if perr.Line != 3 {
		t.Errorf("error line = %d, want 3", perr.Line)
	}
}

func TestWalkVisitsAllNodes(t *testing.T) {
	unit := mustParse(t, `
protocol P {
    loop {
        choose {
            { send A; }
            { break; }
        }
    }
    split {
        tx { send B; }
        rx { recv C; }
    }
}
`)

	counts := map[NodeType]int{}
	unit.Walk(func(n *Node) bool {
		counts[n.Type]++
		return true
	})

	want := map[NodeType]int{
		NodeUnit:     1,
		NodeProtocol: 1,
		NodeLoop:     1,
		NodeChoose:   1,
		NodeBranch:   4, // two choose branches plus the split halves
		NodeSend:     2,
		NodeRecv:     1,
		NodeBreak:    1,
		NodeSplit:    1,
	}
	for typ, n := range want {
		if counts[typ] != n {
			t.Errorf("walk visited %d %s nodes, want %d", counts[typ], typ, n)
		}
	}
}

func TestWalkStopsOnFalse(t *testing.T) {
	unit := mustParse(t, `
protocol P {
    loop {
        send A;
    }
}
`)

	visited := 0
	unit.Walk(func(n *Node) bool {
		visited++
		return n.Type != NodeLoop
	})

	// Unit, Protocol, Loop; the send inside the loop is skipped
	if visited != 3 {
		t.Errorf("walk visited %d nodes, want 3", visited)
	}
}
