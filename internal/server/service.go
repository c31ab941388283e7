package server

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/wolfpit/wolfpit/internal/agent"
	"github.com/wolfpit/wolfpit/internal/engine"
	"github.com/wolfpit/wolfpit/internal/game"
	"github.com/wolfpit/wolfpit/internal/matchid"
	"github.com/wolfpit/wolfpit/internal/randutil"
)

// match tracks one lobby or running match.
type match struct {
	id      string
	engine  *engine.Engine
	humans  []game.PlayerID
	bots    []game.PlayerID
	roles   map[game.PlayerID]game.Role
	started bool
}

func (m *match) rosterSize() int { return len(m.humans) + len(m.bots) }

// MatchService owns all matches on a server: lobby management, seat
// filling with built-in bots, routing of client messages into engines
// and relaying engine notifications back out over the transport.
type MatchService struct {
	server    *Server
	logger    *log.Logger
	clock     quartz.Clock
	match     game.MatchConfig
	autoFill  bool
	botPrefix string

	mu      sync.Mutex
	rng     *rand.Rand
	ids     *matchid.Generator
	matches map[string]*match
	players map[string]*match // playerID -> joined match
}

// ServiceConfig carries match-service construction options.
type ServiceConfig struct {
	Seed  int64
	Clock quartz.Clock
	Match game.MatchConfig
	Bots  BotSettings
}

// NewMatchService creates the service. The seed drives every seed set
// handed to engines, so a seeded server replays its matches.
func NewMatchService(server *Server, logger *log.Logger, cfg ServiceConfig) *MatchService {
	prefix := cfg.Bots.NamePrefix
	if prefix == "" {
		prefix = "bot"
	}
	return &MatchService{
		server:    server,
		logger:    logger.WithPrefix("match-service"),
		clock:     cfg.Clock,
		match:     cfg.Match,
		autoFill:  cfg.Bots.AutoFill,
		botPrefix: prefix,
		rng:       randutil.New(cfg.Seed),
		ids:       matchid.NewGenerator(nil),
		matches:   make(map[string]*match),
		players:   make(map[string]*match),
	}
}

// HandleAuth authenticates a connection under a player name. Names
// already connected or already holding a seat in any match (human or
// bot) are reserved; accepting them would let a stranger act for that
// seat.
func (s *MatchService) HandleAuth(conn *Connection, data AuthData) {
	if data.PlayerName == "" {
		s.respondAuth(conn, AuthResponseData{Success: false, Error: "player name required"})
		return
	}
	for _, existing := range s.server.ConnectedPlayers() {
		if existing == data.PlayerName {
			s.respondAuth(conn, AuthResponseData{Success: false, Error: "name already connected"})
			return
		}
	}
	s.mu.Lock()
	reserved := s.nameReservedLocked(data.PlayerName)
	s.mu.Unlock()
	if reserved {
		s.respondAuth(conn, AuthResponseData{Success: false, Error: "name is seated in a match"})
		return
	}
	conn.SetPlayer(data.PlayerName)
	s.respondAuth(conn, AuthResponseData{Success: true, PlayerID: data.PlayerName})
	s.logger.Info("player authenticated", "player", data.PlayerName)
}

// nameReservedLocked reports whether a name holds a seat somewhere.
func (s *MatchService) nameReservedLocked(name string) bool {
	if _, seated := s.players[name]; seated {
		return true
	}
	id := game.PlayerID(name)
	for _, m := range s.matches {
		for _, b := range m.bots {
			if b == id {
				return true
			}
		}
	}
	return false
}

func (s *MatchService) respondAuth(conn *Connection, data AuthResponseData) {
	if msg, err := NewMessage(MessageTypeAuthResponse, data); err == nil {
		_ = conn.SendMessage(msg)
	}
}

// HandleJoinMatch seats an authenticated player. An empty match ID
// creates a fresh lobby.
func (s *MatchService) HandleJoinMatch(conn *Connection, data JoinMatchData) {
	player := conn.GetPlayer()
	if player == "" {
		conn.sendError("not_authenticated", "authenticate before joining")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, joined := s.players[player]; joined {
		conn.sendError("already_joined", "player is already in a match")
		return
	}

	m, err := s.lobbyLocked(data.MatchID)
	if err != nil {
		conn.sendError("match_unavailable", err.Error())
		return
	}

	id := game.PlayerID(player)
	m.humans = append(m.humans, id)
	s.players[player] = m
	conn.SetMatch(m.id)

	players := make([]string, 0, m.rosterSize())
	for _, h := range m.humans {
		players = append(players, string(h))
	}
	for _, b := range m.bots {
		players = append(players, string(b))
	}
	if msg, err := NewMessage(MessageTypeMatchJoined, MatchJoinedData{
		MatchID: m.id,
		Seat:    m.rosterSize() - 1,
		Players: players,
	}); err == nil {
		_ = conn.SendMessage(msg)
	}
	s.logger.Info("player joined match", "player", player, "match", m.id, "seats", m.rosterSize())

	if s.autoFill && m.rosterSize() < game.RosterSize {
		s.fillBotsLocked(m, game.RosterSize-m.rosterSize())
	}
	if m.rosterSize() == game.RosterSize {
		s.startLocked(m)
	}
}

// lobbyLocked finds an open lobby by ID, or creates one for "".
func (s *MatchService) lobbyLocked(id string) (*match, error) {
	if id == "" {
		m := &match{id: s.ids.Generate()}
		s.matches[m.id] = m
		s.logger.Info("created match lobby", "match", m.id)
		return m, nil
	}
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("no such match: %s", id)
	}
	if m.started {
		return nil, fmt.Errorf("match already started: %s", id)
	}
	if m.rosterSize() >= game.RosterSize {
		return nil, fmt.Errorf("match is full: %s", id)
	}
	return m, nil
}

// HandleAddBots fills lobby seats with built-in bots. Count zero fills
// the roster, which starts the match.
func (s *MatchService) HandleAddBots(conn *Connection, data AddBotsData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[data.MatchID]
	if !ok || m.started {
		conn.sendError("match_unavailable", "no open match with that id")
		return
	}

	count := data.Count
	if count <= 0 || count > game.RosterSize-m.rosterSize() {
		count = game.RosterSize - m.rosterSize()
	}
	names := s.fillBotsLocked(m, count)

	if msg, err := NewMessage(MessageTypeBotsAdded, BotsAddedData{MatchID: m.id, Names: names}); err == nil {
		_ = conn.SendMessage(msg)
	}

	if m.rosterSize() == game.RosterSize {
		s.startLocked(m)
	}
}

// fillBotsLocked seats count built-in bots in an open lobby.
func (s *MatchService) fillBotsLocked(m *match, count int) []string {
	var names []string
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("%s-%d", s.botPrefix, len(m.bots)+1)
		m.bots = append(m.bots, game.PlayerID(name))
		names = append(names, name)
	}
	s.logger.Info("bots added", "match", m.id, "count", count, "seats", m.rosterSize())
	return names
}

// startLocked builds the engine for a full lobby and begins play.
func (s *MatchService) startLocked(m *match) {
	players := make([]game.Player, 0, game.RosterSize)
	for _, h := range m.humans {
		players = append(players, game.Player{ID: h, Name: string(h), Human: true})
	}
	for _, b := range m.bots {
		players = append(players, game.Player{ID: b, Name: string(b)})
	}

	seeds := game.Seeds{
		Roster:        s.rng.Int64(),
		Roles:         s.rng.Int64(),
		PackSelection: s.rng.Int64(),
		TurnFallback:  s.rng.Int64(),
		NightLeader:   s.rng.Int64(),
	}

	m.engine = engine.New(engine.Config{
		MatchID: m.id,
		Players: players,
		Seeds:   seeds,
		Match:   s.match,
		Clock:   s.clock,
		Logger:  s.logger,
	})

	// Role capture must be wired before Start emits the assignments.
	m.roles = make(map[game.PlayerID]game.Role)
	m.engine.Subscribe("", func(n game.Notification) {
		if ra, ok := n.(game.RoleAssignedNotification); ok {
			m.roles[ra.Player] = ra.Role
		}
	})
	for _, h := range m.humans {
		m.engine.Subscribe(h, s.relaySink(h))
	}

	if err := m.engine.Start(); err != nil {
		s.logger.Error("failed to start match", "match", m.id, "error", err)
		return
	}
	for _, b := range m.bots {
		m.engine.RegisterAgent(b, agent.ForRole(m.roles[b]))
	}
	m.started = true
	s.logger.Info("match started", "match", m.id, "humans", len(m.humans), "bots", len(m.bots))
}

// relaySink forwards one player's notifications over the transport.
func (s *MatchService) relaySink(id game.PlayerID) engine.Sink {
	return func(n game.Notification) {
		msg, err := NewEventMessage(n)
		if err != nil {
			s.logger.Error("failed to encode notification", "type", n.Type(), "error", err)
			return
		}
		if err := s.server.SendToPlayer(string(id), msg); err != nil {
			s.logger.Debug("notification undeliverable", "player", id, "type", n.Type())
		}
	}
}

// HandleLeaveMatch removes a player from a lobby. Seats in a started
// match stay; the seeded fallback covers the silent seat.
func (s *MatchService) HandleLeaveMatch(conn *Connection, data LeaveMatchData) {
	player := conn.GetPlayer()
	s.mu.Lock()
	s.removeLocked(data.MatchID, player)
	s.mu.Unlock()

	conn.SetMatch("")
	if msg, err := NewMessage(MessageTypeMatchLeft, MatchLeftData{MatchID: data.MatchID}); err == nil {
		_ = conn.SendMessage(msg)
	}
}

// PlayerDisconnected cleans up after a dropped connection.
func (s *MatchService) PlayerDisconnected(matchID, player string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(matchID, player)
}

func (s *MatchService) removeLocked(matchID, player string) {
	m, ok := s.matches[matchID]
	if !ok {
		return
	}
	if m.started {
		// The seat and its name reservation stay with the match;
		// finalization falls back for the silent seat.
		s.logger.Info("player left running match", "player", player, "match", matchID)
		return
	}
	delete(s.players, player)
	id := game.PlayerID(player)
	for i, h := range m.humans {
		if h == id {
			m.humans = append(m.humans[:i], m.humans[i+1:]...)
			break
		}
	}
	if m.rosterSize() == 0 {
		delete(s.matches, matchID)
		s.logger.Info("empty lobby removed", "match", matchID)
	}
}

// HandleListMatches reports lobbies and running matches.
func (s *MatchService) HandleListMatches(conn *Connection) {
	s.mu.Lock()
	list := MatchListData{}
	for _, m := range s.matches {
		phase := "lobby"
		if m.started {
			phase = m.engine.Phase().String()
		}
		list.Matches = append(list.Matches, MatchInfo{
			ID:          m.id,
			PlayerCount: m.rosterSize(),
			MaxPlayers:  game.RosterSize,
			Phase:       phase,
		})
	}
	s.mu.Unlock()

	if msg, err := NewMessage(MessageTypeMatchList, list); err == nil {
		_ = conn.SendMessage(msg)
	}
}

// runningMatch resolves the started match a connection acts in. The
// connection must hold a seat in that match; the engine trusts seat
// identity, so forged submissions are stopped here.
func (s *MatchService) runningMatch(conn *Connection, matchID string) (*match, game.PlayerID, bool) {
	player := conn.GetPlayer()
	if player == "" {
		conn.sendError("not_authenticated", "authenticate first")
		return nil, "", false
	}
	s.mu.Lock()
	m, ok := s.matches[matchID]
	seated := ok && s.players[player] == m
	s.mu.Unlock()
	if !ok || !m.started {
		conn.sendError("match_unavailable", "no running match with that id")
		return nil, "", false
	}
	if !seated {
		conn.sendError("not_in_match", "player has no seat in that match")
		return nil, "", false
	}
	return m, game.PlayerID(player), true
}

// applyOrReport runs an event and reports rejections back to the client.
func (s *MatchService) applyOrReport(conn *Connection, m *match, ev game.Event) {
	if err := m.engine.Apply(ev); err != nil {
		conn.sendError("invalid_action", err.Error())
	}
}

// HandleVote routes a vote or stated suspicion.
func (s *MatchService) HandleVote(conn *Connection, data VoteData) {
	m, player, ok := s.runningMatch(conn, data.MatchID)
	if !ok {
		return
	}
	s.applyOrReport(conn, m, game.VoteEvent{Voter: player, Target: game.PlayerID(data.Target)})
}

// HandleWolfChat routes a night chat line.
func (s *MatchService) HandleWolfChat(conn *Connection, data WolfChatData) {
	m, player, ok := s.runningMatch(conn, data.MatchID)
	if !ok {
		return
	}
	s.applyOrReport(conn, m, game.WolfChatMessageEvent{From: player, Text: data.Text})
}

// HandleNightAction routes a divine or guard submission.
func (s *MatchService) HandleNightAction(conn *Connection, data NightActionData) {
	m, player, ok := s.runningMatch(conn, data.MatchID)
	if !ok {
		return
	}
	var kind game.NightActionKind
	switch data.Action {
	case "divine":
		kind = game.ActionDivine
	case "guard":
		kind = game.ActionGuard
	default:
		conn.sendError("invalid_action", "unknown night action: "+data.Action)
		return
	}
	s.applyOrReport(conn, m, game.NightActionEvent{Actor: player, Action: kind, Target: game.PlayerID(data.Target)})
}

// HandleAttack routes a wolf attack submission.
func (s *MatchService) HandleAttack(conn *Connection, data AttackData) {
	m, player, ok := s.runningMatch(conn, data.MatchID)
	if !ok {
		return
	}
	s.applyOrReport(conn, m, game.FactionAttackEvent{Attacker: player, Target: game.PlayerID(data.Target)})
}

// HandleLastWill routes the executed player's final statement, which
// also closes the last-will phase.
func (s *MatchService) HandleLastWill(conn *Connection, data LastWillData) {
	m, player, ok := s.runningMatch(conn, data.MatchID)
	if !ok {
		return
	}
	s.applyOrReport(conn, m, game.LastWillCompleteEvent{Author: player, Text: data.Text})
}
