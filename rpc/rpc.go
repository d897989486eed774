// rpc/rpc.go
package rpc

import (
	"context"
	"encoding/json"
	"net"
	"net/rpc"

	"github.com/wfunc/drawguess/broadcast"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server. Services are registered by the caller
// through the standard net/rpc registry.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// RoomService exposes operator commands over net/rpc: room inspection,
// purging and broadcast notices.
type RoomService struct {
	store       persistence.RoomStore
	lobby       *services.LobbyService
	broadcaster *broadcast.RoomBroadcaster
}

func NewRoomService(store persistence.RoomStore, lobby *services.LobbyService, broadcaster *broadcast.RoomBroadcaster) *RoomService {
	return &RoomService{store: store, lobby: lobby, broadcaster: broadcaster}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []services.RoomSummary
}

func (rs *RoomService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	rooms, err := rs.lobby.ListRooms(context.Background())
	if err != nil {
		return err
	}
	reply.Rooms = rooms
	return nil
}

type RoomStatusArgs struct {
	RoomID string
}

type RoomStatusReply struct {
	Room       json.RawMessage
	TTLSeconds int64
}

// RoomStatus returns the raw room record plus its remaining TTL.
func (rs *RoomService) RoomStatus(args *RoomStatusArgs, reply *RoomStatusReply) error {
	ctx := context.Background()
	room, err := rs.store.GetRoom(ctx, args.RoomID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	ttl, err := rs.store.RoomTTL(ctx, args.RoomID)
	if err != nil {
		return err
	}
	reply.Room = data
	reply.TTLSeconds = int64(ttl.Seconds())
	return nil
}

type PurgeRoomsArgs struct{}

type PurgeRoomsReply struct {
	Purged int
}

func (rs *RoomService) PurgeRooms(args *PurgeRoomsArgs, reply *PurgeRoomsReply) error {
	purged, err := rs.lobby.PurgeRooms(context.Background())
	if err != nil {
		return err
	}
	logger.Log.Infof("Purged %d rooms via RPC", purged)
	reply.Purged = purged
	return nil
}

type NoticeArgs struct {
	RoomID  string // empty broadcasts to every room
	Message string
}

type NoticeReply struct {
	Delivered int
}

// Notice pushes an operator message to one room or to all rooms.
func (rs *RoomService) Notice(args *NoticeArgs, reply *NoticeReply) error {
	payload, err := json.Marshal(map[string]string{"message": args.Message})
	if err != nil {
		return err
	}

	if args.RoomID != "" {
		if err := rs.broadcaster.ToRoom(args.RoomID, network.MsgTypeNotice, payload); err != nil {
			return err
		}
		reply.Delivered = 1
		return nil
	}

	ids, err := rs.store.ListRoomIDs(context.Background())
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := rs.broadcaster.ToRoom(id, network.MsgTypeNotice, payload); err == nil {
			reply.Delivered++
		}
	}
	return nil
}
