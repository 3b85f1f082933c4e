package sdk

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// DataProvider supplies placeholder data when the API cannot be reached.
// It is wired into a Client with WithFallback.
type DataProvider interface {
	ServerSamples(ctx context.Context, server GameServer) ([]TPSSample, error)
	Overview(ctx context.Context, server GameServer) (*ServerOverview, error)
	ServerStatistics(ctx context.Context, server GameServer) (*ServerStatistics, error)
	PlayerStatistics(ctx context.Context, server GameServer, player string) (*PlayerStatistics, error)
	Bans(ctx context.Context, page int, search string) (*BanPage, error)
	Players(ctx context.Context, page int, search string, status PlayerStatus) (*PlayerPage, error)
	Staff(ctx context.Context, server GameServer) ([]StaffMember, error)
	ActivityLogs(ctx context.Context) ([]ActivityLog, error)
	Comment(ctx context.Context, author string, input CommentInput) (*Comment, error)
	Proof(ctx context.Context, uploader string, input ProofInput) (*Proof, error)
}

// DemoProvider serves a fixed demo data set. Comments and proofs fabricated
// through it get locally unique ids.
type DemoProvider struct {
	now    func() time.Time
	nextID atomic.Int64

	mu   sync.Mutex
	logs []ActivityLog
}

var _ DataProvider = (*DemoProvider)(nil)

// NewDemoProvider returns a DemoProvider.
func NewDemoProvider() *DemoProvider {
	d := &DemoProvider{now: time.Now, logs: append([]ActivityLog(nil), demoActivity...)}
	d.nextID.Store(1000)
	return d
}

var demoPlayers = []Player{
	{Username: "Notch", UUID: "069a79f4-44e9-4726-a5be-fca90e38aaf5", Playtime: "127h 45m", LastLogin: "2023-05-15 14:30", FirstJoin: "2022-01-10", Status: PlayersOffline},
	{Username: "Jeb_", UUID: "853c80ef-3c37-49fd-aa49-938b674adae6", Playtime: "98h 12m", LastLogin: "2023-05-18 09:15", FirstJoin: "2022-01-15", Status: PlayersOnline},
	{Username: "Dinnerbone", UUID: "61699b2e-d327-4a01-9f1e-0ea8c3f06bc6", Playtime: "156h 32m", LastLogin: "2023-05-17 22:45", FirstJoin: "2022-01-12", Status: PlayersOnline},
	{Username: "Grumm", UUID: "02d7ab65-7d71-4d0b-b910-f6c29d6c3f37", Playtime: "78h 54m", LastLogin: "2023-05-16 18:20", FirstJoin: "2022-02-05", Status: PlayersOffline},
	{Username: "MojangSupport", UUID: "8667ba71-b85a-4004-af54-457a9734eed7", Playtime: "42h 18m", LastLogin: "2023-05-14 11:10", FirstJoin: "2022-03-20", Status: PlayersOffline},
	{Username: "Marc", UUID: "7125ba93-cef2-4243-88a6-c130f5cd7a8d", Playtime: "112h 05m", LastLogin: "2023-05-18 08:30", FirstJoin: "2022-01-25", Status: PlayersOnline},
	{Username: "MinecraftChick", UUID: "9b2e23b0-eb1a-4c16-8e89-42a37d4a0f5a", Playtime: "65h 40m", LastLogin: "2023-05-17 15:50", FirstJoin: "2022-02-18", Status: PlayersOffline},
	{Username: "Searge", UUID: "3b9f4b7c-0685-4a7c-9476-d9e71324e3e2", Playtime: "89h 22m", LastLogin: "2023-05-18 10:05", FirstJoin: "2022-02-01", Status: PlayersOnline},
	{Username: "EvilSeph", UUID: "5d3da959-0627-4b8d-ba5c-d5146b15a2c0", Playtime: "54h 37m", LastLogin: "2023-05-15 19:25", FirstJoin: "2022-03-05", Status: PlayersOffline},
	{Username: "Grum", UUID: "c4d3a6f4-8bd9-4e5a-9d5e-69758e8c1e2c", Playtime: "103h 15m", LastLogin: "2023-05-18 07:40", FirstJoin: "2022-01-30", Status: PlayersOnline},
}

var demoBans = []Ban{
	{ID: 1, PlayerName: "Griefer123", AdminName: "AdminUser", Reason: "Griefing spawn", FormattedTime: "2023-05-18 10:15", Status: BanPermanent},
	{ID: 2, PlayerName: "Hacker42", AdminName: "ModUser", Reason: "Fly hacks", FormattedTime: "2023-05-17 21:02", FormattedUntil: "2023-06-17 21:02", Status: BanActive},
	{ID: 3, PlayerName: "FalsePositive", AdminName: "ModUser", Reason: "Suspected x-ray", FormattedTime: "2023-05-12 13:40", Status: BanRemoved, UnbannedByName: "AdminUser"},
	{ID: 4, PlayerName: "Spammer", AdminName: "JuniorMod", Reason: "Chat spam", FormattedTime: "2023-04-30 08:11", FormattedUntil: "2023-05-01 08:11", Status: BanExpired},
}

var demoActivity = []ActivityLog{
	{ID: 1, Username: "AdminUser", Action: "Banned player", Target: "Griefer123", Timestamp: "2023-05-18 10:15"},
	{ID: 2, Username: "ModUser", Action: "Added comment to ban", Target: "Hacker42", Timestamp: "2023-05-18 09:30"},
	{ID: 3, Username: "AdminUser", Action: "Added permission", Target: "JuniorMod", Timestamp: "2023-05-17 22:45"},
	{ID: 4, Username: "AdminUser", Action: "Removed ban", Target: "FalsePositive", Timestamp: "2023-05-17 20:10"},
	{ID: 5, Username: "ModUser", Action: "Added proof to ban", Target: "Griefer123", Timestamp: "2023-05-17 18:30"},
}

// FilterPlayers applies a case-insensitive name search and a status filter.
func FilterPlayers(players []Player, search string, status PlayerStatus) []Player {
	search = strings.ToLower(search)
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if search != "" && !strings.Contains(strings.ToLower(p.Username), search) {
			continue
		}
		if status != "" && status != PlayersAll && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (d *DemoProvider) ServerSamples(_ context.Context, server GameServer) ([]TPSSample, error) {
	counts := []int{42, 38, 25, 12, 8, 15}
	now := d.now().Truncate(time.Hour)
	samples := make([]TPSSample, 0, len(counts))
	for i, n := range counts {
		samples = append(samples, TPSSample{
			ID:            int64(i + 1),
			ServerID:      serverIndex(server),
			Date:          now.Add(-time.Duration(i*4) * time.Hour).Unix(),
			TPS:           19.8,
			PlayersOnline: n,
			CPUUsage:      35,
			RAMUsage:      4096,
		})
	}
	return samples, nil
}

func (d *DemoProvider) Overview(_ context.Context, _ GameServer) (*ServerOverview, error) {
	return &ServerOverview{
		OnlinePlayers: 42,
		MaxPlayers:    defaultMaxPlayers,
		Uptime:        "3 days, 7 hours",
		TPS:           19.8,
		CPUUsage:      35,
		MemoryUsage:   4096,
		MemoryTotal:   defaultMemoryTotal,
		PlayerActivity: []ActivityPoint{
			{Time: "00:00", Count: 15},
			{Time: "04:00", Count: 8},
			{Time: "08:00", Count: 12},
			{Time: "12:00", Count: 25},
			{Time: "16:00", Count: 38},
			{Time: "20:00", Count: 42},
		},
	}, nil
}

func (d *DemoProvider) ServerStatistics(_ context.Context, _ GameServer) (*ServerStatistics, error) {
	var stats ServerStatistics
	stats.TopPlayers.ByPlaytime = []LeaderboardEntry{
		{Name: "Notch", Playtime: 127.5},
		{Name: "Dinnerbone", Playtime: 98.2},
		{Name: "Jeb_", Playtime: 89.7},
		{Name: "Marc", Playtime: 76.3},
		{Name: "Grum", Playtime: 65.1},
	}
	stats.TopPlayers.ByKills = []LeaderboardEntry{
		{Name: "Dinnerbone", Kills: 1245},
		{Name: "Grum", Kills: 987},
		{Name: "Marc", Kills: 856},
		{Name: "Jeb_", Kills: 743},
		{Name: "Notch", Kills: 621},
	}
	return &stats, nil
}

func (d *DemoProvider) PlayerStatistics(_ context.Context, _ GameServer, player string) (*PlayerStatistics, error) {
	id := "069a79f4-44e9-4726-a5be-fca90e38aaf5"
	for _, p := range demoPlayers {
		if strings.EqualFold(p.Username, player) {
			id = p.UUID
			break
		}
	}
	return &PlayerStatistics{
		Username:   player,
		UUID:       id,
		Total:      PlayerTotals{Playtime: 127.5 * 3600, Kills: 621, Deaths: 198, MobKills: 4321},
		LastSeen:   time.Date(2023, 5, 18, 10, 15, 0, 0, time.UTC).Unix(),
		Registered: time.Date(2022, 1, 10, 8, 30, 0, 0, time.UTC).Unix(),
		Country:    "Unknown",
	}, nil
}

func (d *DemoProvider) Bans(_ context.Context, page int, search string) (*BanPage, error) {
	search = strings.ToLower(search)
	matched := make([]Ban, 0, len(demoBans))
	for _, b := range demoBans {
		if search == "" || strings.Contains(strings.ToLower(b.PlayerName), search) || strings.Contains(strings.ToLower(b.Reason), search) {
			matched = append(matched, b)
		}
	}
	return &BanPage{
		Items:      paginate(matched, page),
		Total:      len(matched),
		Page:       page,
		TotalPages: TotalPages(len(matched)),
	}, nil
}

func (d *DemoProvider) Players(_ context.Context, page int, search string, status PlayerStatus) (*PlayerPage, error) {
	matched := FilterPlayers(demoPlayers, search, status)
	return &PlayerPage{
		Items:      paginate(matched, page),
		Total:      len(matched),
		Filtered:   true,
		Page:       page,
		TotalPages: TotalPages(len(matched)),
	}, nil
}

func (d *DemoProvider) Staff(_ context.Context, server GameServer) ([]StaffMember, error) {
	return []StaffMember{
		{Username: "AdminUser", UUID: "7125ba93-cef2-4243-88a6-c130f5cd7a8d", Role: RoleAdmin, Server: server, Permissions: []string{"ban.add", "ban.remove", "user.manage", "staff.manage"}, LastActive: "2023-05-18 10:15"},
		{Username: "ModUser", UUID: "8667ba71-b85a-4004-af54-457a9734eed7", Role: RoleModerator, Server: server, Permissions: []string{"ban.add", "user.view"}, LastActive: "2023-05-18 09:30"},
		{Username: "JuniorMod", UUID: "9b2e23b0-eb1a-4c16-8e89-42a37d4a0f5a", Role: RoleModerator, Server: server, Permissions: []string{"ban.add"}, LastActive: "2023-05-17 22:45"},
	}, nil
}

func (d *DemoProvider) ActivityLogs(_ context.Context) ([]ActivityLog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	logs := append([]ActivityLog(nil), d.logs...)
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Timestamp > logs[j].Timestamp })
	return logs, nil
}

func (d *DemoProvider) Comment(_ context.Context, author string, input CommentInput) (*Comment, error) {
	d.record(author, "Added comment to ban", fmt.Sprintf("#%d", input.BanID))
	return &Comment{
		ID:         d.nextID.Add(1),
		BanID:      input.BanID,
		AuthorName: author,
		Content:    input.Content,
		CreatedAt:  d.now().UTC().Format(time.RFC3339),
	}, nil
}

func (d *DemoProvider) Proof(_ context.Context, uploader string, input ProofInput) (*Proof, error) {
	d.record(uploader, "Added proof to ban", fmt.Sprintf("#%d", input.BanID))
	url := input.URL
	if url == "" {
		url = "demo://" + uuid.NewString()
	}
	return &Proof{
		ID:        d.nextID.Add(1),
		BanID:     input.BanID,
		AdminName: uploader,
		URL:       url,
		Type:      input.Type,
		CreatedAt: d.now().UTC().Format(time.RFC3339),
	}, nil
}

func (d *DemoProvider) record(user, action, target string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logs = append(d.logs, ActivityLog{
		ID:        int64(len(d.logs) + 1),
		Username:  user,
		Action:    action,
		Target:    target,
		Timestamp: d.now().Format("2006-01-02 15:04"),
	})
}

func paginate[T any](items []T, page int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func serverIndex(server GameServer) int64 {
	for i, s := range GameServers {
		if s == server {
			return int64(i + 1)
		}
	}
	return 0
}
