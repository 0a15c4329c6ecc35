package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"
)

// Handlers are the daemon callbacks the server dispatches commands to. The
// server package stays free of daemon imports; wiring happens in main.
type Handlers struct {
	ReloadConfiguration func(path string) error
	State               func() ([]byte, error)
	Status              func() StatusData
	ShowBorder          func()
	HideBorder          func()
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handlers     Handlers
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the given socket path. A stale
// socket left by a previous run is removed.
func NewServer(socketPath string, handlers Handlers) *Server {
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handlers:   handlers,
		startTime:  time.Now(),
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// Listener returns the socket the server accepts connections on. It is nil
// before Start.
func (s *Server) Listener() net.Listener {
	return s.listener
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReloadConfiguration:
		return s.handleReload(req.Payload)
	case CommandGetState:
		return s.handleGetState()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandShowBorder:
		return s.handleBorderToggle(s.handlers.ShowBorder)
	case CommandHideBorder:
		return s.handleBorderToggle(s.handlers.HideBorder)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration document
func (s *Server) handleReload(payload json.RawMessage) *Response {
	log.Println("IPC: Received RELOAD_CONFIGURATION command")

	var reload ReloadPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &reload); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid reload payload: %v", err))
		}
	}

	if s.handlers.ReloadConfiguration == nil {
		return NewErrorResponse("Reload is not available")
	}
	if err := s.handlers.ReloadConfiguration(reload.ConfigPath); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload configuration: %v", err))
	}

	log.Println("IPC: Configuration reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetState returns the live state serialized as a configuration
// document.
func (s *Server) handleGetState() *Response {
	if s.handlers.State == nil {
		return NewErrorResponse("State is not available")
	}

	state, err := s.handlers.State()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to serialize state: %v", err))
	}

	return &Response{Status: "OK", Data: state}
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	var status StatusData
	if s.handlers.Status != nil {
		status = s.handlers.Status()
	}
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleBorderToggle(toggle func()) *Response {
	if toggle == nil {
		return NewErrorResponse("Border control is not available")
	}
	toggle()

	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
