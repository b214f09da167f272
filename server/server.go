package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"allam/cycle"
	"allam/fluid"
	"allam/model"
)

// Engine is what every connection solves with.
type Engine struct {
	Solver  *cycle.Solver
	Backend fluid.Backend // recuperator profiles
	Env     model.Env     // initial operating point of a connection

	Workers      int // sweep pool size
	SweepSteps   int // used when a sweep request omits steps
	ProfileSteps int
}

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	engine   Engine
}

func NewServer(addr string, upgrader websocket.Upgrader, engine Engine) *Server {
	if engine.SweepSteps <= 0 {
		engine.SweepSteps = 50
	}
	if engine.ProfileSteps <= 0 {
		engine.ProfileSteps = 100
	}
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		engine:   engine,
	}
}

// serveWs handles websocket requests from the peer.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	defer conn.Close()

	hub := NewHub(conn, s.engine)
	go hub.handleRequest()
	go hub.handleResponse()

	log.WithField("remote", conn.RemoteAddr().String()).Info("client connected")
	for {
		var msg model.Msg
		err = conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("err: ", err)
			}
			break
		}
		hub.msg <- msg
	}
	close(hub.msg)
	<-hub.done
	log.WithField("remote", conn.RemoteAddr().String()).Info("client disconnected")
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	return mux
}

func (s *Server) Serve() error {
	log.WithField("addr", s.addr).Info("listening")
	return http.ListenAndServe(s.addr, s.Handler())
}
