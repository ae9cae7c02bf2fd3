// Package commands defines typed builders and reply shapes for the
// server's console command set, plus the registry the CLI uses to
// dispatch a verb typed by the operator.
//
// The protocol core is generic over reply shapes; this package is the
// thin collaborator that knows the actual commands.  Verbs without a
// registry entry are still usable: they fall through to a raw send.
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"grcon/internal/rcon"
)

// ── Reply shapes ─────────────────────────────────────────────────────

// AckReply is the bare acknowledgement most mutating commands return.
type AckReply struct {
	rcon.Header
}

// ServerInfoReply describes the running server.
type ServerInfoReply struct {
	rcon.Header
	ServerName  string `json:"ServerName"`
	MapName     string `json:"MapName"`
	PlayerCount int    `json:"PlayerCount"`
	MaxPlayers  int    `json:"MaxPlayers"`
	ServerTime  string `json:"ServerTime"`
}

// Player is one entry of a PlayerList reply.
type Player struct {
	ID   string `json:"PlayerID"`
	Name string `json:"PlayerName"`
}

// PlayerListReply lists the currently connected players.
type PlayerListReply struct {
	rcon.Header
	Players []Player `json:"Players"`
}

// ── Builders ─────────────────────────────────────────────────────────

func ServerInfo() rcon.Command { return rcon.NewCommand("ServerInfo") }

func PlayerList() rcon.Command { return rcon.NewCommand("PlayerList") }

func KickPlayer(id, reason string) rcon.Command {
	return rcon.NewCommand("KickPlayer", id, reason)
}

func BanPlayer(id, reason string) rcon.Command {
	return rcon.NewCommand("BanPlayer", id, reason)
}

func Announce(message string) rcon.Command {
	return rcon.NewCommand("Announce", message)
}

func Save() rcon.Command { return rcon.NewCommand("Save") }

// ── Registry ─────────────────────────────────────────────────────────

// Entry describes one dispatchable verb for the CLI.
type Entry struct {
	Verb    string
	MinArgs int
	Usage   string
	Run     func(ctx context.Context, s *rcon.Session, args []string) (string, error)
}

var registry = buildRegistry()

func buildRegistry() map[string]Entry {
	entries := []Entry{
		{
			Verb:  "ServerInfo",
			Usage: "ServerInfo",
			Run: func(ctx context.Context, s *rcon.Session, _ []string) (string, error) {
				reply, err := rcon.Send[ServerInfoReply](ctx, s, ServerInfo())
				if err != nil {
					return "", err
				}
				return renderServerInfo(reply), nil
			},
		},
		{
			Verb:  "PlayerList",
			Usage: "PlayerList",
			Run: func(ctx context.Context, s *rcon.Session, _ []string) (string, error) {
				reply, err := rcon.Send[PlayerListReply](ctx, s, PlayerList())
				if err != nil {
					return "", err
				}
				return renderPlayerList(reply), nil
			},
		},
		{
			Verb:    "KickPlayer",
			MinArgs: 1,
			Usage:   "KickPlayer <id> [reason...]",
			Run: func(ctx context.Context, s *rcon.Session, args []string) (string, error) {
				cmd := KickPlayer(args[0], joinReason(args[1:]))
				return ackRun(ctx, s, cmd)
			},
		},
		{
			Verb:    "BanPlayer",
			MinArgs: 1,
			Usage:   "BanPlayer <id> [reason...]",
			Run: func(ctx context.Context, s *rcon.Session, args []string) (string, error) {
				cmd := BanPlayer(args[0], joinReason(args[1:]))
				return ackRun(ctx, s, cmd)
			},
		},
		{
			Verb:    "Announce",
			MinArgs: 1,
			Usage:   "Announce <message...>",
			Run: func(ctx context.Context, s *rcon.Session, args []string) (string, error) {
				return ackRun(ctx, s, Announce(strings.Join(args, " ")))
			},
		},
		{
			Verb:  "Save",
			Usage: "Save",
			Run: func(ctx context.Context, s *rcon.Session, _ []string) (string, error) {
				return ackRun(ctx, s, Save())
			},
		},
	}

	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[strings.ToLower(e.Verb)] = e
	}
	return m
}

// Lookup finds the entry for verb, matching case-insensitively.
func Lookup(verb string) (Entry, bool) {
	e, ok := registry[strings.ToLower(verb)]
	return e, ok
}

// Verbs returns every registered verb, sorted.
func Verbs() []string {
	out := make([]string, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.Verb)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs verb with args on the session.  Registered verbs get
// typed decode and rendering; unknown verbs are sent raw and their
// reply text returned verbatim.
func Dispatch(ctx context.Context, s *rcon.Session, verb string, args []string) (string, error) {
	e, ok := Lookup(verb)
	if !ok {
		return rcon.SendRaw(ctx, s, rcon.NewCommand(verb, args...))
	}
	if len(args) < e.MinArgs {
		return "", fmt.Errorf("usage: %s", e.Usage)
	}
	return e.Run(ctx, s, args)
}

func ackRun(ctx context.Context, s *rcon.Session, cmd rcon.Command) (string, error) {
	if _, err := rcon.Send[AckReply](ctx, s, cmd); err != nil {
		return "", err
	}
	return "OK", nil
}

func joinReason(args []string) string {
	if len(args) == 0 {
		return "removed by admin"
	}
	return strings.Join(args, " ")
}

// ── Renderers ────────────────────────────────────────────────────────

func renderServerInfo(r *ServerInfoReply) string {
	var b strings.Builder
	fmt.Fprintf(&b, "server:  %s\n", r.ServerName)
	fmt.Fprintf(&b, "map:     %s\n", r.MapName)
	fmt.Fprintf(&b, "players: %d/%d\n", r.PlayerCount, r.MaxPlayers)
	if r.ServerTime != "" {
		fmt.Fprintf(&b, "time:    %s\n", r.ServerTime)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPlayerList(r *PlayerListReply) string {
	if len(r.Players) == 0 {
		return "no players online"
	}
	var b strings.Builder
	for _, p := range r.Players {
		fmt.Fprintf(&b, "%-20s %s\n", p.ID, p.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}
