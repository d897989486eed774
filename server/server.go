// server/server.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/drawguess/broadcast"
	"github.com/wfunc/drawguess/game"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/monitor"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/persistence"
	drawguess_rpc "github.com/wfunc/drawguess/rpc"
	"github.com/wfunc/drawguess/services"
	"github.com/wfunc/drawguess/session"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	engine         *game.Engine
	store          persistence.RoomStore
	sessionManager *session.Manager
	lobby          *services.LobbyService
	broadcaster    *broadcast.RoomBroadcaster
	monitor        *monitor.Monitor
	rpcServer      *drawguess_rpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(addr, rpcAddr string, engine *game.Engine, store persistence.RoomStore, sessionManager *session.Manager, broadcaster *broadcast.RoomBroadcaster, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           addr,
		engine:         engine,
		store:          store,
		sessionManager: sessionManager,
		lobby:          services.NewLobbyService(store),
		broadcaster:    broadcaster,
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化RPC服务器
	rpcServer, err := drawguess_rpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	roomService := drawguess_rpc.NewRoomService(store, s.lobby, broadcaster)
	rpc.Register(roomService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	go s.trackActiveRooms()

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

// trackActiveRooms samples the room count for the metrics endpoint.
func (s *GameServer) trackActiveRooms() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.shutdownChan:
			return
		case <-ticker.C:
			ids, err := s.store.ListRoomIDs(context.Background())
			if err != nil {
				continue
			}
			s.monitor.SetActiveRooms(len(ids))
		}
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn, r.URL.Query().Get("clientId"))
}

func (s *GameServer) handleConnection(conn *websocket.Conn, clientID string) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	sess.ClientID = clientID
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.sessionManager.Remove(sess.GetID())
		// 断线宽限：给客户端重连的机会，再移出房间
		if roomID := sess.RoomID(); roomID != "" {
			s.engine.ScheduleLeave(roomID, sess.GetID(), sess.ClientID)
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			start := time.Now()
			s.monitor.IncMessagesReceived()
			s.handlePacket(sess, packet)
			s.monitor.ObserveMessageLatency(time.Since(start))
		}
	}
}

type errorPayload struct {
	Message string `json:"message"`
}

// sendError surfaces a validation failure to the originating connection only.
func (s *GameServer) sendError(sess *session.Session, err error) {
	if err == nil {
		return
	}
	data, _ := json.Marshal(errorPayload{Message: err.Error()})
	sess.Send(network.MsgTypeError, data)
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	ctx := context.Background()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(ctx, sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(ctx, sess)
	case network.MsgTypeStartGame:
		s.handleStartGame(ctx, sess, packet)
	case network.MsgTypeGuess:
		s.handleGuess(ctx, sess, packet)
	case network.MsgTypeWordSelect:
		s.handleWordSelect(ctx, sess, packet)
	case network.MsgTypeChangeSetting:
		s.handleChangeSetting(ctx, sess, packet)
	case network.MsgTypeVoteKick:
		s.handleVoteKick(ctx, sess, packet)
	case network.MsgTypeReaction:
		s.handleReaction(ctx, sess, packet)
	case network.MsgTypeDrawStart, network.MsgTypeDrawPoint, network.MsgTypeDrawEnd,
		network.MsgTypeDrawClear, network.MsgTypeDrawUndo, network.MsgTypeDrawSync:
		s.handleDraw(ctx, sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

type joinRoomRequest struct {
	Create    bool            `json:"create"`
	RoomID    string          `json:"roomId"`
	QuickJoin bool            `json:"quickJoin"`
	Name      string          `json:"name"`
	Language  models.Language `json:"language"`
	ClientID  string          `json:"clientId"`
}

func (s *GameServer) handleJoinRoom(ctx context.Context, sess *session.Session, packet *network.Packet) {
	var req joinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	if req.ClientID != "" {
		sess.ClientID = req.ClientID
	}

	roomID := req.RoomID
	switch {
	case req.Create:
		created, err := s.engine.CreateRoom(ctx, sess.GetID(), req.Language)
		if err != nil {
			s.sendError(sess, err)
			return
		}
		roomID = created
	case req.QuickJoin:
		found, err := s.lobby.FindPublicRoom(ctx, req.Language)
		if err != nil {
			s.sendError(sess, err)
			return
		}
		roomID = found
	case roomID == "":
		s.sendError(sess, game.ErrRoomIDRequired)
		return
	}

	// Subscribe before joining so the joiner receives its own room snapshot.
	sess.SetRoomID(roomID)
	if err := s.engine.Join(ctx, roomID, sess.GetID(), sess.ClientID, req.Name); err != nil {
		sess.SetRoomID("")
		s.sendError(sess, err)
		return
	}
}

func (s *GameServer) handleLeaveRoom(ctx context.Context, sess *session.Session) {
	roomID := sess.RoomID()
	if roomID == "" {
		return
	}
	sess.SetRoomID("")
	if err := s.engine.Leave(ctx, roomID, sess.GetID()); err != nil {
		logger.Log.Warnf("Session %s failed to leave room %s: %v", sess.GetID(), roomID, err)
	}
}

func (s *GameServer) handleStartGame(ctx context.Context, sess *session.Session, packet *network.Packet) {
	var req struct {
		Words []string `json:"words"`
	}
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			s.sendError(sess, err)
			return
		}
	}
	if err := s.engine.StartGame(ctx, sess.RoomID(), sess.GetID(), req.Words); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleGuess(ctx context.Context, sess *session.Session, packet *network.Packet) {
	var req struct {
		Guess string `json:"guess"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	s.monitor.IncGuesses()
	if err := s.engine.Guess(ctx, sess.RoomID(), sess.GetID(), req.Guess); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleWordSelect(ctx context.Context, sess *session.Session, packet *network.Packet) {
	var req struct {
		Word string `json:"word"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	if err := s.engine.SelectWord(ctx, sess.RoomID(), sess.GetID(), req.Word); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleChangeSetting(ctx context.Context, sess *session.Session, packet *network.Packet) {
	var req struct {
		Setting string          `json:"setting"`
		Value   json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	if err := s.engine.ChangeSetting(ctx, sess.RoomID(), sess.GetID(), req.Setting, req.Value); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleVoteKick(ctx context.Context, sess *session.Session, packet *network.Packet) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	if err := s.engine.VoteKick(ctx, sess.RoomID(), sess.GetID(), req.PlayerID); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleReaction(ctx context.Context, sess *session.Session, packet *network.Packet) {
	var req struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}
	if err := s.engine.React(ctx, sess.RoomID(), sess.GetID(), req.Type); err != nil {
		s.sendError(sess, err)
	}
}

var drawKinds = map[uint16]game.DrawActionKind{
	network.MsgTypeDrawStart: game.DrawStart,
	network.MsgTypeDrawPoint: game.DrawPoint,
	network.MsgTypeDrawEnd:   game.DrawEnd,
	network.MsgTypeDrawClear: game.DrawClear,
	network.MsgTypeDrawUndo:  game.DrawUndo,
	network.MsgTypeDrawSync:  game.DrawSync,
}

// handleDraw validates the payload at the transport boundary: the action
// kind comes from the message id, never from client-supplied fields.
func (s *GameServer) handleDraw(ctx context.Context, sess *session.Session, packet *network.Packet) {
	var action game.DrawAction
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &action); err != nil {
			s.sendError(sess, err)
			return
		}
	}
	action.Kind = drawKinds[packet.MsgID]

	if err := s.engine.HandleDrawAction(ctx, sess.RoomID(), sess.GetID(), action); err != nil {
		s.sendError(sess, err)
	}
}
