package encoding

import (
	"errors"
	"reflect"
	"testing"

	"github.com/beka-birhanu/vinom-snake/game"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func playedSnapshot(t *testing.T) game.Snapshot {
	t.Helper()
	g, err := game.New(game.Config{
		Width:  10,
		Height: 10,
		Start:  game.StartPositions{Snake: game.Point{X: 2, Y: 5}, Apple: game.Point{X: 7, Y: 5}},
		Seed:   123.0,
	})
	if err != nil {
		t.Fatalf("game.New: %v", err)
	}
	up := game.Up
	g.Step(nil)
	g.Step(&up)
	g.Step(nil)
	return g.Snapshot()
}

func TestGameStateRoundTrip(t *testing.T) {
	enc := &Protobuf{}
	want := playedSnapshot(t)
	if len(want.Turns) == 0 || len(want.Body) == 0 {
		t.Fatalf("snapshot is missing turns or body: %+v", want)
	}

	b, err := enc.MarshalGameState(want)
	if err != nil {
		t.Fatalf("MarshalGameState: %v", err)
	}
	got, err := enc.UnmarshalGameState(b)
	if err != nil {
		t.Fatalf("UnmarshalGameState: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestUnmarshalGameStateRejectsMalformedInput(t *testing.T) {
	enc := &Protobuf{}

	if _, err := enc.UnmarshalGameState([]byte{0xff, 0xff, 0xff}); !errors.Is(err, ErrMalformedState) {
		t.Errorf("garbage bytes: error = %v, want ErrMalformedState", err)
	}

	st, err := SnapshotToStruct(playedSnapshot(t))
	if err != nil {
		t.Fatalf("SnapshotToStruct: %v", err)
	}
	delete(st.Fields, fieldHead)
	st.Fields[fieldLost] = structpb.NewStringValue("no")
	b, err := proto.Marshal(st)
	if err != nil {
		t.Fatalf("proto.Marshal: %v", err)
	}
	if _, err := enc.UnmarshalGameState(b); !errors.Is(err, ErrMalformedState) {
		t.Errorf("missing head: error = %v, want ErrMalformedState", err)
	}
}

func TestActionRoundTrip(t *testing.T) {
	enc := &Protobuf{}
	for _, d := range []game.Direction{game.Up, game.Down, game.Left, game.Right} {
		b, err := enc.MarshalAction(d)
		if err != nil {
			t.Fatalf("MarshalAction(%v): %v", d, err)
		}
		got, err := enc.UnmarshalAction(b)
		if err != nil {
			t.Fatalf("UnmarshalAction(%v): %v", d, err)
		}
		if got != d {
			t.Errorf("UnmarshalAction = %v, want %v", got, d)
		}
	}
}

func TestActionRejectsUnknownDirections(t *testing.T) {
	enc := &Protobuf{}
	if _, err := enc.MarshalAction(game.Direction(9)); !errors.Is(err, ErrMalformedAction) {
		t.Errorf("MarshalAction(9) error = %v, want ErrMalformedAction", err)
	}

	for name, v := range map[string]*structpb.Value{
		"unknown name": structpb.NewStringValue("sideways"),
		"number":       structpb.NewNumberValue(2),
	} {
		b, err := proto.Marshal(v)
		if err != nil {
			t.Fatalf("%s: proto.Marshal: %v", name, err)
		}
		if _, err := enc.UnmarshalAction(b); !errors.Is(err, ErrMalformedAction) {
			t.Errorf("%s: error = %v, want ErrMalformedAction", name, err)
		}
	}
}
