package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/bidtactoe-backend/internal/entity"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/game"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/pkg"
	"github.com/rocketscienceinc/bidtactoe-backend/internal/service"
)

type gameManager interface {
	RegisterPlayer(connID, name string) (*entity.Player, error)
	PlayerInfo(connID string) (*entity.Player, error)

	CreateRoom(connID string, baseBid int) (*entity.RoomViews, error)
	JoinRoom(connID, code string) (*entity.RoomViews, error)
	SpectateRoom(connID, code string) (*entity.RoomViews, error)

	SubmitBid(code, mark string, amount int) (*entity.RoomViews, game.BidOutcome, error)
	PlaceMark(code, mark string, cell int) (*entity.RoomViews, bool, error)
	Surrender(code, connID, mark string) (*entity.RoomViews, error)
	ResetGame(code string) (*entity.RoomViews, error)
	RenameRoom(code, connID, name string) (*entity.RoomViews, error)

	LeaveRoom(code, connID string) (*service.Departure, error)
	Disconnect(connID string) *service.Departure

	Listing() []entity.RoomSummary
	PurgeRoom(code string) bool
}

// connection wraps one client socket; writes are serialised per connection.
type connection struct {
	id      string
	sock    *websocket.Conn
	writeMu sync.Mutex
}

func (that *connection) send(message *Message) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.sock.WriteJSON(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

type Server struct {
	logger  *slog.Logger
	manager gameManager

	purgeDelay time.Duration
	upgrader   websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*connection

	handlers map[string]func(conn *connection, message *Message) error
}

func New(logger *slog.Logger, manager gameManager, purgeDelay time.Duration) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		manager: manager,

		purgeDelay: purgeDelay,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		connections: make(map[string]*connection),
		handlers:    make(map[string]func(*connection, *Message) error),
	}

	server.handlers[actionRegister] = server.handleRegister
	server.handlers[actionInfo] = server.handleInfo
	server.handlers[actionCreate] = server.handleCreateRoom
	server.handlers[actionJoin] = server.handleJoinRoom
	server.handlers[actionSpectate] = server.handleSpectateRoom
	server.handlers[actionList] = server.handleRoomList
	server.handlers[actionBid] = server.handleBid
	server.handlers[actionMark] = server.handleMark
	server.handlers[actionSurrender] = server.handleSurrender
	server.handlers[actionReset] = server.handleReset
	server.handlers[actionLeave] = server.handleLeave
	server.handlers[actionRename] = server.handleRename

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveConnection(w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveConnection - upgrades the connection and pumps its messages until it dies.
func (that *Server) serveConnection(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveConnection")

	sock, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{
		id:   pkg.GenerateConnectionID(),
		sock: sock,
	}

	that.connectionsMutex.Lock()
	that.connections[conn.id] = conn
	that.connectionsMutex.Unlock()

	log.Info("WebSocket connection established", "connID", conn.id)

	defer func() {
		_ = sock.Close()
		that.handleDisconnect(conn)
	}()

	that.handleMessages(conn)
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(conn *connection) {
	log := that.logger.With("method", "handleMessages", "connID", conn.id)

	for {
		var message Message
		if err := conn.sock.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("error reading message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)
			continue
		}

		if err := handler(conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)

			if sendErr := that.sendError(conn, err); sendErr != nil {
				log.Error("failed to send error response", "error", sendErr)
			}
		}
	}
}

// handleDisconnect - runs the lifecycle disconnect branches for a dead connection.
func (that *Server) handleDisconnect(conn *connection) {
	log := that.logger.With("method", "handleDisconnect", "connID", conn.id)

	that.connectionsMutex.Lock()
	delete(that.connections, conn.id)
	that.connectionsMutex.Unlock()

	departure := that.manager.Disconnect(conn.id)
	if departure != nil {
		that.notifyDeparture(departure, conn.id)
	}

	that.broadcastRoomList()

	log.Info("player disconnected")
}

func (that *Server) connectionByID(connID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[connID]

	return conn, ok
}
