package server

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"allam/model"
	"allam/sweep"
)

// reply types
const (
	typeEnvSet  = "envSet"
	typeStarted = "started"
	typeSwept   = "swept"
	typeStopped = "stopped"
	typeError   = "error"
)

// Hub serves one websocket connection: requests are handled in arrival order,
// replies are written by a single goroutine.
type Hub struct {
	engine Engine
	conn   *websocket.Conn
	env    model.Env
	runner *sweep.Runner

	// request
	msg chan model.Msg
	// finished sweeps, handed back to the request loop
	swept chan sweepResult
	// response
	reply chan model.Msg
	done  chan struct{}

	// cancels the running sweep, if any
	cancel context.CancelFunc
	// id of the sweep whose result is still wanted
	sweepID int
}

type sweepResult struct {
	id  int
	rep *sweep.Report
	err error
}

func NewHub(conn *websocket.Conn, engine Engine) *Hub {
	return &Hub{
		engine: engine,
		conn:   conn,
		env:    engine.Env,
		runner: sweep.NewRunner(engine.Solver, engine.Workers),
		msg:    make(chan model.Msg, 10),
		swept:  make(chan sweepResult),
		reply:  make(chan model.Msg, 10),
		done:   make(chan struct{}),
	}
}

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.Println("err: ", err)
			}
		case <-h.done:
			return
		}
	}
}

// send queues a reply; it gives up once the connection is gone.
func (h *Hub) send(reply model.Msg) {
	select {
	case h.reply <- reply:
	case <-h.done:
	}
}

func (h *Hub) sendError(err error) {
	h.send(model.Msg{Type: typeError, Content: err.Error()})
}

func (h *Hub) sendJSON(typ string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.sendError(err)
		return
	}
	h.send(model.Msg{Type: typ, Content: string(data)})
}

func (h *Hub) handleRequest() {
	defer close(h.done)
	defer h.stopSweep()

	for {
		select {
		case msg, ok := <-h.msg:
			if !ok {
				return
			}
			h.handleMsg(msg)
		case res := <-h.swept:
			h.finishSweep(res)
		}
	}
}

func (h *Hub) handleMsg(msg model.Msg) {
	switch msg.Type {
	case "env":
		env := h.env
		if err := json.Unmarshal([]byte(msg.Content), &env); err != nil {
			h.sendError(err)
			return
		}
		h.env = env
		h.sendJSON(typeEnvSet, h.env)
	case "start":
		h.start()
	case "sweep":
		var req model.SweepReq
		if err := json.Unmarshal([]byte(msg.Content), &req); err != nil {
			h.sendError(err)
			return
		}
		spec, err := req.Spec(h.engine.SweepSteps)
		if err != nil {
			h.sendError(err)
			return
		}
		h.startSweep(spec)
	case "stop":
		h.stopSweep()
		h.send(model.Msg{Type: typeStopped, Content: "stopped"})
	default:
		log.WithField("type", msg.Type).Warn("no such type")
		h.send(model.Msg{Type: typeError, Content: "no such type: " + msg.Type})
	}
}

func (h *Hub) start() {
	res, err := h.engine.Solver.Solve(h.env.Conditions())
	if err != nil {
		log.WithField("env", h.env).Warn("solve failed: ", err)
		h.sendError(err)
		return
	}
	data := model.NewCycleData(res)
	if h.engine.Backend != nil {
		profile, err := res.RecuperatorProfile(h.engine.Backend, h.engine.ProfileSteps)
		if err != nil {
			log.Warn("recuperator profile: ", err)
		} else {
			data.Recuperator = profile
		}
	}
	h.sendJSON(typeStarted, data)
}

// startSweep runs spec in the background, replacing any sweep in progress.
func (h *Hub) startSweep(spec sweep.Spec) {
	h.stopSweep()
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	id := h.sweepID

	base := h.env.Conditions()
	go func() {
		defer cancel()
		rep, err := h.runner.Run(ctx, base, spec)
		select {
		case h.swept <- sweepResult{id: id, rep: rep, err: err}:
		case <-h.done:
		}
	}()
}

// finishSweep replies with a sweep result unless the sweep was stopped or
// replaced since it started.
func (h *Hub) finishSweep(res sweepResult) {
	if res.id != h.sweepID || h.cancel == nil {
		log.WithField("sweep", res.id).Debug("dropping stale sweep result")
		return
	}
	h.cancel()
	h.cancel = nil
	h.sweepID++
	if res.err != nil {
		h.sendError(res.err)
		return
	}
	h.sendJSON(typeSwept, model.NewSweepData(res.rep))
}

// stopSweep cancels the running sweep and invalidates its result.
func (h *Hub) stopSweep() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
		h.sweepID++
	}
}
