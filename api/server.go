package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-snake/encoding"
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/beka-birhanu/vinom-snake/service"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/google/uuid"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Request and response field names.
const (
	fieldPlayerID  = "player_id"
	fieldSessionID = "session_id"
	fieldDirection = "direction"
	fieldPubKey    = "server_pub_key"
	fieldAddr      = "server_addr"
)

type Server struct {
	gameSessionManager i.GameSessionManager
	gameEncoder        i.GameEncoder

	UnimplementedSessionServer
}

// RegisterNewGameSessionManager exposes gsm as the Session service on gsr.
// enc must be the encoder gsm was built with.
func RegisterNewGameSessionManager(gsr grpc.ServiceRegistrar, gsm i.GameSessionManager, enc i.GameEncoder) error {
	if gsm == nil || enc == nil {
		return errors.New("session manager and encoder are required")
	}
	server := &Server{
		gameSessionManager: gsm,
		gameEncoder:        enc,
	}

	RegisterSessionServer(gsr, server)
	return nil
}

func (s *Server) NewGame(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.gameSessionManager.NewSession(playerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{fieldSessionID: sessionID.String()})
}

func (s *Server) Steer(ctx context.Context, r *structpb.Struct) (*emptypb.Empty, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}
	raw, err := stringField(r, fieldDirection)
	if err != nil {
		return nil, err
	}
	dir, err := game.ParseDirection(raw)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.gameSessionManager.Steer(playerID, dir); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) Reset(ctx context.Context, r *structpb.Struct) (*emptypb.Empty, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}

	if err := s.gameSessionManager.Reset(playerID); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Server) State(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}

	payload, err := s.gameSessionManager.State(playerID)
	if err != nil {
		return nil, toStatus(err)
	}
	snap, err := s.gameEncoder.UnmarshalGameState(payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "decoding game state: %s", err)
	}

	st, err := encoding.SnapshotToStruct(snap)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding game state: %s", err)
	}
	return st, nil
}

// SessionInfo tells a player where to open the UDP channel that carries live
// states and steering. The public key is base64 encoded.
func (s *Server) SessionInfo(ctx context.Context, r *structpb.Struct) (*structpb.Struct, error) {
	playerID, err := parsePlayerID(r)
	if err != nil {
		return nil, err
	}

	pubKey, serverAddr, err := s.gameSessionManager.SessionInfo(playerID)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		fieldPubKey: base64.StdEncoding.EncodeToString(pubKey),
		fieldAddr:   serverAddr,
	})
}

func parsePlayerID(r *structpb.Struct) (uuid.UUID, error) {
	raw, err := stringField(r, fieldPlayerID)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "Error parsing playerID: %s", err)
	}
	return id, nil
}

func stringField(r *structpb.Struct, key string) (string, error) {
	v, ok := r.GetFields()[key].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Error(codes.InvalidArgument, fmt.Sprintf("missing string field %q", key))
	}
	return v.StringValue, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrNoSession):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrSessionExists):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
