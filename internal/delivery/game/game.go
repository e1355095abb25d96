package game

import (
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go_rules/internal/domain/game"
	"go_rules/internal/engine"
	errs "go_rules/internal/errors"
	"go_rules/internal/httpresponse"
	gameuc "go_rules/internal/usecase/game"
	"go_rules/internal/utils"
)

type GameHandler struct {
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase

	subsMu sync.Mutex
	subs   map[string]map[*websocket.Conn]bool
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameHandler {
	return &GameHandler{
		log:    log,
		gameUC: gameUC,
		subs:   make(map[string]map[*websocket.Conn]bool),
	}
}

func (g *GameHandler) Routes(r chi.Router) {
	r.Post("/games", g.HandleNewGame)
	r.Get("/games/{id}", g.HandleGetGame)
	r.Post("/games/{id}/play", g.HandlePlay)
	r.Post("/games/{id}/pass", g.HandlePass)
	r.Get("/games/{id}/ws", g.HandleSubscribe)
}

func (g *GameHandler) HandleNewGame(w http.ResponseWriter, r *http.Request) {
	var req game.CreateGameRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("HandleNewGame: ", err)
		httpresponse.WriteError(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}

	created, err := g.gameUC.CreateGame(r.Context(), req)
	if err != nil {
		g.log.Error("HandleNewGame: ", err)
		if errors.Is(err, errs.ErrCreateGame) {
			httpresponse.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		httpresponse.WriteInternalErrorResponse(w)
		return
	}

	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameCreateResponse{ID: created.ID})
}

func (g *GameHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	found, state, err := g.gameUC.GetGame(r.Context(), id)
	if err != nil {
		g.writeUseCaseError(w, "HandleGetGame", err)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, game.GameStateResponse{Game: found, State: state})
}

func (g *GameHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	var req game.MoveRequest
	if err := utils.DecodeJSONRequest(r, &req); err != nil {
		g.log.Error("HandlePlay: ", err)
		httpresponse.WriteError(w, http.StatusBadRequest, httpresponse.MALFORMEDJSON_errorDesc)
		return
	}
	if req.Pass {
		httpresponse.WriteError(w, http.StatusBadRequest, "use /pass to pass")
		return
	}
	action, err := req.Action()
	if err != nil {
		httpresponse.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	g.submit(w, r, action)
}

func (g *GameHandler) HandlePass(w http.ResponseWriter, r *http.Request) {
	g.submit(w, r, game.Pass())
}

func (g *GameHandler) submit(w http.ResponseWriter, r *http.Request, action game.Action) {
	id := chi.URLParam(r, "id")
	res, err := g.gameUC.Play(r.Context(), id, action)
	if err != nil {
		g.writeUseCaseError(w, "submit", err)
		return
	}

	resp := stateResponse(res)
	g.broadcast(id, res.Outcome, resp)
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, resp)
}

func (g *GameHandler) writeUseCaseError(w http.ResponseWriter, where string, err error) {
	switch {
	case errors.Is(err, errs.ErrGameNotFound):
		httpresponse.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrGameFinished):
		httpresponse.WriteError(w, http.StatusConflict, err.Error())
	default:
		g.log.Errorf("%s: %v", where, err)
		httpresponse.WriteInternalErrorResponse(w)
	}
}

func stateResponse(res gameuc.PlayResult) game.GameStateResponse {
	resp := game.GameStateResponse{
		Game:    res.Game,
		State:   res.State,
		Status:  string(res.Outcome.Status()),
		Message: engine.Describe(res.Outcome),
	}
	switch o := res.Outcome.(type) {
	case engine.Repeated:
		resp.Repetitions = o.Repetitions
	case engine.Accepted:
		resp.Repetitions = o.Repetitions
	}
	return resp
}

// HandleSubscribe streams the game to a websocket client. The client may
// also send MoveRequest frames; rejections are answered only to it.
func (g *GameHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	found, state, err := g.gameUC.GetGame(ctx, id)
	if err != nil {
		g.writeUseCaseError(w, "HandleSubscribe", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error: ", err)
		return
	}
	g.subscribe(id, conn)
	defer g.unsubscribe(id, conn)

	if err := g.write(conn, game.GameStateResponse{Game: found, State: state}); err != nil {
		return
	}

	for {
		var req game.MoveRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.Warn("read error: ", err)
			}
			return
		}

		action, err := req.Action()
		if err != nil {
			rejected := engine.Invalid{Reason: err}
			_ = g.write(conn, game.GameStateResponse{
				Status:  string(rejected.Status()),
				Message: engine.Describe(rejected),
			})
			continue
		}

		res, err := g.gameUC.Play(ctx, id, action)
		if err != nil {
			_ = g.write(conn, game.GameStateResponse{Message: err.Error()})
			continue
		}
		resp := stateResponse(res)
		if !g.broadcast(id, res.Outcome, resp) {
			_ = g.write(conn, resp)
		}
	}
}

func (g *GameHandler) subscribe(id string, conn *websocket.Conn) {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	if g.subs[id] == nil {
		g.subs[id] = make(map[*websocket.Conn]bool)
	}
	g.subs[id][conn] = true
}

func (g *GameHandler) unsubscribe(id string, conn *websocket.Conn) {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	delete(g.subs[id], conn)
	if len(g.subs[id]) == 0 {
		delete(g.subs, id)
	}
	conn.Close()
}

// broadcast pushes resp to every subscriber when the outcome changed the
// game. It reports whether anything was sent.
func (g *GameHandler) broadcast(id string, outcome engine.Outcome, resp game.GameStateResponse) bool {
	switch outcome.(type) {
	case engine.Accepted, engine.Ended:
	default:
		return false
	}

	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	for conn := range g.subs[id] {
		if err := conn.WriteJSON(resp); err != nil {
			g.log.Warn("write to subscriber error: ", err)
		}
	}
	return true
}

func (g *GameHandler) write(conn *websocket.Conn, resp game.GameStateResponse) error {
	g.subsMu.Lock()
	defer g.subsMu.Unlock()
	if err := conn.WriteJSON(resp); err != nil {
		g.log.Warn("write error: ", err)
		return err
	}
	return nil
}
