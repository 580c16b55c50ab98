// Package encoding serialises game snapshots and player actions as protobuf
// well-known types, so that any protobuf client can read them without a
// generated schema.
package encoding

import (
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-snake/game"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Encoding errors.
var (
	ErrMalformedState  = errors.New("malformed game state")
	ErrMalformedAction = errors.New("malformed action")
)

// Snapshot field names.
const (
	fieldWidth         = "width"
	fieldHeight        = "height"
	fieldHead          = "head"
	fieldDirection     = "direction"
	fieldTail          = "tail"
	fieldTailDirection = "tail_direction"
	fieldTurns         = "turns"
	fieldBody          = "body"
	fieldGrowth        = "growth"
	fieldApple         = "apple"
	fieldApplesEaten   = "apples_eaten"
	fieldLost          = "lost"
	fieldStepTime      = "step_time_ns"
	fieldSeed          = "seed"
	fieldX             = "x"
	fieldY             = "y"
)

// Protobuf encodes game data as google.protobuf.Struct and Value messages.
type Protobuf struct{}

// MarshalGameState encodes a snapshot.
func (p *Protobuf) MarshalGameState(s game.Snapshot) ([]byte, error) {
	st, err := SnapshotToStruct(s)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// UnmarshalGameState decodes a snapshot produced by MarshalGameState.
func (p *Protobuf) UnmarshalGameState(b []byte) (game.Snapshot, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(b, st); err != nil {
		return game.Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return StructToSnapshot(st)
}

// MarshalAction encodes a direction as a string value.
func (p *Protobuf) MarshalAction(d game.Direction) ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAction, d)
	}
	return proto.Marshal(structpb.NewStringValue(d.String()))
}

// UnmarshalAction decodes a direction produced by MarshalAction.
func (p *Protobuf) UnmarshalAction(b []byte) (game.Direction, error) {
	v := &structpb.Value{}
	if err := proto.Unmarshal(b, v); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}
	if _, ok := v.GetKind().(*structpb.Value_StringValue); !ok {
		return 0, fmt.Errorf("%w: direction is not a string", ErrMalformedAction)
	}

	d, err := game.ParseDirection(v.GetStringValue())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}
	return d, nil
}

// SnapshotToStruct maps a snapshot onto a protobuf Struct.
func SnapshotToStruct(s game.Snapshot) (*structpb.Struct, error) {
	turns := make([]interface{}, len(s.Turns))
	for i, t := range s.Turns {
		turns[i] = map[string]interface{}{
			fieldDirection: t.Dir.String(),
			fieldX:         t.At.X,
			fieldY:         t.At.Y,
		}
	}

	body := make([]interface{}, len(s.Body))
	for i, p := range s.Body {
		body[i] = pointToMap(p)
	}

	return structpb.NewStruct(map[string]interface{}{
		fieldWidth:         s.Width,
		fieldHeight:        s.Height,
		fieldHead:          pointToMap(s.Head),
		fieldDirection:     s.Direction.String(),
		fieldTail:          pointToMap(s.Tail),
		fieldTailDirection: s.TailDirection.String(),
		fieldTurns:         turns,
		fieldBody:          body,
		fieldGrowth:        s.Growth,
		fieldApple:         pointToMap(s.Apple),
		fieldApplesEaten:   s.ApplesEaten,
		fieldLost:          s.Lost,
		fieldStepTime:      int64(s.StepTime),
		fieldSeed:          s.Seed,
	})
}

// StructToSnapshot is the inverse of SnapshotToStruct.
func StructToSnapshot(st *structpb.Struct) (game.Snapshot, error) {
	var s game.Snapshot
	d := decoder{fields: st.GetFields()}

	s.Width = d.integer(fieldWidth)
	s.Height = d.integer(fieldHeight)
	s.Head = d.point(fieldHead)
	s.Direction = d.direction(fieldDirection)
	s.Tail = d.point(fieldTail)
	s.TailDirection = d.direction(fieldTailDirection)
	s.Growth = d.integer(fieldGrowth)
	s.Apple = d.point(fieldApple)
	s.ApplesEaten = uint32(d.integer(fieldApplesEaten))
	s.Lost = d.boolean(fieldLost)
	s.StepTime = time.Duration(d.number(fieldStepTime))
	s.Seed = d.number(fieldSeed)

	s.Turns = make([]game.Turn, 0)
	for _, v := range d.list(fieldTurns) {
		td := decoder{fields: v.GetStructValue().GetFields()}
		s.Turns = append(s.Turns, game.Turn{
			Dir: td.direction(fieldDirection),
			At:  game.Point{X: td.integer(fieldX), Y: td.integer(fieldY)},
		})
		if td.err != nil && d.err == nil {
			d.err = td.err
		}
	}

	s.Body = make([]game.Point, 0)
	for _, v := range d.list(fieldBody) {
		bd := decoder{fields: v.GetStructValue().GetFields()}
		s.Body = append(s.Body, game.Point{X: bd.integer(fieldX), Y: bd.integer(fieldY)})
		if bd.err != nil && d.err == nil {
			d.err = bd.err
		}
	}

	if d.err != nil {
		return game.Snapshot{}, d.err
	}
	return s, nil
}

func pointToMap(p game.Point) map[string]interface{} {
	return map[string]interface{}{fieldX: p.X, fieldY: p.Y}
}

// decoder reads typed fields and keeps the first error it meets.
type decoder struct {
	fields map[string]*structpb.Value
	err    error
}

func (d *decoder) fail(key, want string) {
	if d.err == nil {
		d.err = fmt.Errorf("%w: field %q is not a %s", ErrMalformedState, key, want)
	}
}

func (d *decoder) number(key string) float64 {
	v, ok := d.fields[key].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		d.fail(key, "number")
		return 0
	}
	return v.NumberValue
}

func (d *decoder) integer(key string) int {
	return int(d.number(key))
}

func (d *decoder) boolean(key string) bool {
	v, ok := d.fields[key].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		d.fail(key, "bool")
		return false
	}
	return v.BoolValue
}

func (d *decoder) direction(key string) game.Direction {
	v, ok := d.fields[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		d.fail(key, "string")
		return 0
	}
	dir, err := game.ParseDirection(v.StringValue)
	if err != nil {
		d.fail(key, "direction")
	}
	return dir
}

func (d *decoder) point(key string) game.Point {
	v, ok := d.fields[key].GetKind().(*structpb.Value_StructValue)
	if !ok {
		d.fail(key, "point")
		return game.Point{}
	}
	pd := decoder{fields: v.StructValue.GetFields()}
	p := game.Point{X: pd.integer(fieldX), Y: pd.integer(fieldY)}
	if pd.err != nil {
		d.fail(key, "point")
	}
	return p
}

func (d *decoder) list(key string) []*structpb.Value {
	v, ok := d.fields[key].GetKind().(*structpb.Value_ListValue)
	if !ok {
		d.fail(key, "list")
		return nil
	}
	return v.ListValue.GetValues()
}
