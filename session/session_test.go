package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/drawguess/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sessionID := "test_session_1"
	sess := NewSession(sessionID, &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrievedSess, exists := manager.Get(sessionID)
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrievedSess != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove(sessionID)
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	_, exists = manager.Get(sessionID)
	if exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestManager_GetByRoomID(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.SetRoomID("room_a")

	sess2 := NewSession("session2", &MockConnection{})
	sess2.SetRoomID("room_b")

	sess3 := NewSession("session3", &MockConnection{})
	sess3.SetRoomID("room_a")

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	roomA := manager.GetByRoomID("room_a")
	if len(roomA) != 2 {
		t.Errorf("Expected 2 sessions for room_a, got %d", len(roomA))
	}

	roomB := manager.GetByRoomID("room_b")
	if len(roomB) != 1 {
		t.Errorf("Expected 1 session for room_b, got %d", len(roomB))
	}

	roomC := manager.GetByRoomID("room_c")
	if len(roomC) != 0 {
		t.Errorf("Expected 0 sessions for room_c, got %d", len(roomC))
	}
}

func TestSession_RoomID(t *testing.T) {
	sess := NewSession("test_session", &MockConnection{})
	if sess.RoomID() != "" {
		t.Errorf("Expected empty room id on a fresh session, got %q", sess.RoomID())
	}

	sess.SetRoomID("room_1")
	if sess.RoomID() != "room_1" {
		t.Errorf("Expected room_1, got %q", sess.RoomID())
	}
}
