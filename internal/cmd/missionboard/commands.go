package missionboard

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/louisbranch/missionboard/internal/services/board/app"
	"github.com/louisbranch/missionboard/internal/services/board/domain"
)

type command struct {
	usage   string
	minArgs int
	// rooms marks commands that read the room list derived from missions.
	rooms bool
	run   func(ctx context.Context, s *app.Session, cfg Config, out io.Writer) error
}

var commands = map[string]command{
	"missions":       {usage: "[-name n] [-status s]", run: listMissions},
	"mine":           {run: myMissions},
	"join":           {usage: "<mission-id>", minArgs: 1, run: joinMission},
	"crew-count":     {run: crewCount},
	"create":         {usage: "<name>", minArgs: 1, run: createMission},
	"friends":        {run: listFriends},
	"friend-request": {usage: "<username>", minArgs: 1, run: friendAction(sendRequest)},
	"accept":         {usage: "<username>", minArgs: 1, run: friendAction(accept)},
	"reject":         {usage: "<username>", minArgs: 1, run: friendAction(reject)},
	"cancel":         {usage: "<username>", minArgs: 1, run: friendAction(cancel)},
	"unfriend":       {usage: "<username>", minArgs: 1, run: friendAction(unfriend)},
	"rooms":          {rooms: true, run: listRooms},
	"send":           {usage: "<room-id|username> <text>", minArgs: 2, run: sendMessage},
}

func listMissions(ctx context.Context, s *app.Session, cfg Config, out io.Writer) error {
	missions := s.Missions.List(ctx, domain.MissionFilter{Name: cfg.NameFilter, Status: domain.MissionStatus(cfg.StatusFilter)})
	return writeMissions(out, missions)
}

func myMissions(ctx context.Context, s *app.Session, _ Config, out io.Writer) error {
	return writeMissions(out, s.Missions.MyMissions(ctx))
}

func joinMission(ctx context.Context, s *app.Session, cfg Config, out io.Writer) error {
	id, err := strconv.ParseInt(cfg.Args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("%w: invalid mission id %q", ErrUsage, cfg.Args[0])
	}
	var snapshot *domain.Mission
	for _, m := range s.Missions.List(ctx, domain.MissionFilter{}) {
		if m.ID == id {
			found := m
			snapshot = &found
			break
		}
	}
	s.Missions.Join(ctx, id, snapshot)
	_, err = fmt.Fprintf(out, "joined mission %d\n", id)
	return err
}

func crewCount(ctx context.Context, s *app.Session, _ Config, out io.Writer) error {
	count, err := s.Missions.CrewCount(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, count)
	return err
}

func createMission(ctx context.Context, s *app.Session, cfg Config, out io.Writer) error {
	id, err := s.Missions.Create(ctx, domain.MissionDraft{Name: strings.Join(cfg.Args, " ")})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "created mission %d\n", id)
	return err
}

func listFriends(_ context.Context, s *app.Session, _ Config, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tNAME\tSTATUS")
	for _, e := range s.Friends.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Username, e.DisplayName, e.Status)
	}
	return tw.Flush()
}

type friendOp func(ctx context.Context, s *app.Session, username string) error

func sendRequest(ctx context.Context, s *app.Session, u string) error { return s.Friends.SendRequest(ctx, u) }
func accept(ctx context.Context, s *app.Session, u string) error      { return s.Friends.Accept(ctx, u) }
func reject(ctx context.Context, s *app.Session, u string) error      { return s.Friends.Reject(ctx, u) }
func cancel(ctx context.Context, s *app.Session, u string) error      { return s.Friends.Cancel(ctx, u) }
func unfriend(ctx context.Context, s *app.Session, u string) error    { return s.Friends.Remove(ctx, u) }

func friendAction(op friendOp) func(context.Context, *app.Session, Config, io.Writer) error {
	return func(ctx context.Context, s *app.Session, cfg Config, out io.Writer) error {
		if err := op(ctx, s, cfg.Args[0]); err != nil {
			return err
		}
		return listFriends(ctx, s, cfg, out)
	}
}

func listRooms(ctx context.Context, s *app.Session, _ Config, out io.Writer) error {
	if err := s.WaitRoomSync(ctx); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tNAME")
	for _, r := range s.Chat.Rooms().Read() {
		fmt.Fprintf(tw, "%s\t%s\n", r.Key(), r.Name)
	}
	return tw.Flush()
}

func sendMessage(_ context.Context, s *app.Session, cfg Config, out io.Writer) error {
	key := parseRoomKey(cfg.Args[0])
	msg, err := s.Chat.SendMessage(key, strings.Join(cfg.Args[1:], " "))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "[%s] %s: %s\n", key, msg.Sender, msg.Text)
	return err
}

// parseRoomKey reads a positive integer as a mission room and anything else
// as a username.
func parseRoomKey(value string) domain.RoomKey {
	value = strings.TrimSpace(value)
	if id, err := strconv.ParseInt(value, 10, 64); err == nil && id > 0 {
		return domain.MissionRoomKey(id)
	}
	return domain.PrivateRoomKey(value)
}

func writeMissions(out io.Writer, missions []domain.Mission) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tCHIEF\tCREW")
	for _, m := range missions {
		crew := "-"
		if m.CrewCount != nil {
			crew = strconv.Itoa(*m.CrewCount)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Status, m.ChiefDisplayName, crew)
	}
	return tw.Flush()
}
