package main

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/udp-socket-manager/crypto"
	udppb "github.com/beka-birhanu/udp-socket-manager/encoding"
	udpsocket "github.com/beka-birhanu/udp-socket-manager/socket"
	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	socket_i "github.com/beka-birhanu/vinom-common/interfaces/socket"
	logger "github.com/beka-birhanu/vinom-common/log"
	"github.com/beka-birhanu/vinom-snake/api"
	"github.com/beka-birhanu/vinom-snake/config"
	"github.com/beka-birhanu/vinom-snake/encoding"
	"github.com/beka-birhanu/vinom-snake/game"
	"github.com/beka-birhanu/vinom-snake/service"
	"github.com/beka-birhanu/vinom-snake/service/i"
	"github.com/google/uuid"
	"google.golang.org/grpc"
)

// Global variables for dependencies
var (
	grpcConnListener   net.Listener
	grpcServer         *grpc.Server
	udpSocketManager   socket_i.ServerSocketManager
	gameEncoder        i.GameEncoder
	gameSessionManager i.GameSessionManager
	appLogger          general_i.Logger
)

// clientSocket narrows the UDP socket manager to what the session manager
// pushes through.
type clientSocket struct {
	socket socket_i.ServerSocketManager
}

func (c clientSocket) BroadcastToClients(clientIDs []uuid.UUID, recordType byte, payload []byte) {
	c.socket.BroadcastToClients(clientIDs, recordType, payload)
}

func (c clientSocket) GetPublicKey() []byte { return c.socket.GetPublicKey() }

func (c clientSocket) GetAddr() string { return c.socket.GetAddr() }

func initUDPSocketManager() {
	serverAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.UdpPort))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Resolving server address: %v", err))
		os.Exit(1)
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Generating RSA key: %v", err))
		os.Exit(1)
	}

	serverLogger, err := logger.New("SERVER-SOCKET", config.ColorBlue, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating UDP socket manager logger: %v", err))
		os.Exit(1)
	}
	server, err := udpsocket.NewServerSocketManager(
		udpsocket.ServerConfig{
			ListenAddr:  serverAddr,
			AsymmCrypto: crypto.NewRSA(privateKey),
			SymmCrypto:  crypto.NewAESCBC(),
			Encoder:     &udppb.Protobuf{},
			HMAC:        &crypto.HMAC{},
			Logger:      serverLogger,
		},
		udpsocket.ServerWithReadBufferSize(config.Envs.UDPBufferSize),
		udpsocket.ServerWithHeartbeatExpiration(time.Duration(config.Envs.UDPHeartbeatExpiration)*time.Millisecond),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating server UDP socket manager: %v", err))
		os.Exit(1)
	}

	udpSocketManager = server
	appLogger.Info("UDP Socket Manager initialized")
}

func initGameSessionManager() {
	gameLogger, err := logger.New("SESSION-MANAGER", config.ColorCyan, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager logger: %v", err))
		os.Exit(1)
	}

	w, h := config.Envs.BoardWidth, config.Envs.BoardHeight
	gameEncoder = &encoding.Protobuf{}
	manager, err := service.NewGameSessionManager(
		&service.Config{
			GameConfig: game.Config{
				Width:    w,
				Height:   h,
				Start:    game.DefaultStart(w, h),
				Seed:     config.Envs.Seed,
				StepTime: config.Envs.StepTime,
			},
			GameDuration: config.Envs.SessionDuration,
			GameEncoder:  gameEncoder,
			Socket:       clientSocket{socket: udpSocketManager},
			Logger:       gameLogger,
		},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game session manager: %v", err))
		os.Exit(1)
	}
	udpSocketManager.SetClientRequestHandler(manager.HandleClientRequest)
	udpSocketManager.SetClientAuthenticator(manager)
	gameSessionManager = manager
	appLogger.Info(fmt.Sprintf("Game Session Manager initialized with a %dx%d board", w, h))
}

func initSessionController() {
	grpcLogger, err := logger.New("GRPC", config.ColorPurple, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating gRPC logger: %v", err))
		os.Exit(1)
	}

	grpcServer = grpc.NewServer(grpc.UnaryInterceptor(api.LoggingInterceptor(grpcLogger)))
	err = api.RegisterNewGameSessionManager(grpcServer, gameSessionManager, gameEncoder)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating and Registering session controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session controller initialized")
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	initUDPSocketManager()
	initGameSessionManager()
	initSessionController()

	// The socket outlives the games; their end records go out through it.
	defer udpSocketManager.Stop()
	defer gameSessionManager.StopAll()

	go udpSocketManager.Serve()
	appLogger.Info(fmt.Sprintf("UDP Socket Manager serving at: %s", udpSocketManager.GetAddr()))

	var err error
	addr := fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.GrpcPort)
	grpcConnListener, err = net.Listen("tcp", addr)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Listening tcp: %v", err))
		udpSocketManager.Stop()
		os.Exit(1)
	}
	defer func() {
		_ = grpcConnListener.Close()
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		appLogger.Info(fmt.Sprintf("Received %s, shutting down", s))
		grpcServer.GracefulStop()
	}()

	appLogger.Info(fmt.Sprintf("Serving gRPC at: %s", addr))
	if err := grpcServer.Serve(grpcConnListener); err != nil {
		appLogger.Error(fmt.Sprintf("Serving gRPC: %v", err))
		gameSessionManager.StopAll()
		udpSocketManager.Stop()
		os.Exit(1)
	}
	appLogger.Info("gRPC server stopped")
}
