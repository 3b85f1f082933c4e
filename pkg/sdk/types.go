package sdk

import (
	"fmt"
	"time"
)

// GameServer identifies one of the game servers the panel reports on.
type GameServer string

const (
	ServerAnarxiya GameServer = "anarxiya"
	ServerSurvival GameServer = "survival"
	ServerBoxPvP   GameServer = "boxpvp"
)

// GameServers lists every known game server.
var GameServers = []GameServer{ServerAnarxiya, ServerSurvival, ServerBoxPvP}

// ParseGameServer validates a game server name.
func ParseGameServer(s string) (GameServer, error) {
	switch GameServer(s) {
	case ServerAnarxiya, ServerSurvival, ServerBoxPvP:
		return GameServer(s), nil
	default:
		return "", fmt.Errorf("unknown game server %q (expected anarxiya, survival or boxpvp)", s)
	}
}

// PageSize is the number of items the API returns per page.
const PageSize = 10

// TotalPages converts an item count into a page count. Zero items is one page.
func TotalPages(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

// TPSSample is one metrics sample recorded by the server's analytics plugin.
type TPSSample struct {
	ID            int64   `json:"id"`
	ServerID      int64   `json:"server_id"`
	Date          int64   `json:"date"`
	TPS           float64 `json:"tps"`
	PlayersOnline int     `json:"players_online"`
	CPUUsage      float64 `json:"cpu_usage"`
	RAMUsage      float64 `json:"ram_usage"`
	Entities      int     `json:"entities"`
	ChunksLoaded  int     `json:"chunks_loaded"`
	FreeDiskSpace int64   `json:"free_disk_space"`
}

// Time returns the sample timestamp.
func (s TPSSample) Time() time.Time {
	return time.Unix(s.Date, 0)
}

// ActivityPoint is the online player count at a point in time.
type ActivityPoint struct {
	Time  string `json:"time"`
	Count int    `json:"count"`
}

// ServerOverview is the dashboard summary derived from the latest samples.
type ServerOverview struct {
	OnlinePlayers  int             `json:"onlinePlayers"`
	MaxPlayers     int             `json:"maxPlayers"`
	Uptime         string          `json:"uptime"`
	TPS            float64         `json:"tps"`
	CPUUsage       float64         `json:"cpuUsage"`
	MemoryUsage    float64         `json:"memoryUsage"`
	MemoryTotal    float64         `json:"memoryTotal"`
	PlayerActivity []ActivityPoint `json:"playerActivity"`
}

// Server capacity figures are not exposed by the API yet.
const (
	defaultMaxPlayers  = 100
	defaultMemoryTotal = 8192
)

// OverviewFromSamples builds the dashboard summary. Samples are newest first,
// the activity series is returned oldest first.
func OverviewFromSamples(samples []TPSSample, loc *time.Location) (*ServerOverview, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no TPS data available")
	}
	if loc == nil {
		loc = time.Local
	}

	latest := samples[0]
	activity := make([]ActivityPoint, 0, len(samples))
	for i := len(samples) - 1; i >= 0; i-- {
		activity = append(activity, ActivityPoint{
			Time:  samples[i].Time().In(loc).Format("15:04"),
			Count: samples[i].PlayersOnline,
		})
	}

	return &ServerOverview{
		OnlinePlayers:  latest.PlayersOnline,
		MaxPlayers:     defaultMaxPlayers,
		Uptime:         "Online",
		TPS:            latest.TPS,
		CPUUsage:       latest.CPUUsage,
		MemoryUsage:    latest.RAMUsage,
		MemoryTotal:    defaultMemoryTotal,
		PlayerActivity: activity,
	}, nil
}

// LeaderboardEntry is a player and the value it is ranked by.
type LeaderboardEntry struct {
	Name     string  `json:"name"`
	Playtime float64 `json:"playtime,omitempty"`
	Kills    int     `json:"kills,omitempty"`
}

// ServerStatistics is the aggregate statistics payload of a game server.
type ServerStatistics struct {
	TopPlayers struct {
		ByPlaytime []LeaderboardEntry `json:"byPlaytime"`
		ByKills    []LeaderboardEntry `json:"byKills"`
	} `json:"topPlayers"`
}

// PlayerTotals are lifetime counters for one player. Playtime is in seconds.
type PlayerTotals struct {
	Playtime float64 `json:"playtime"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	MobKills int     `json:"mob_kills"`
}

// PlayerStatistics is the per-player statistics payload.
type PlayerStatistics struct {
	Username   string       `json:"username"`
	UUID       string       `json:"uuid"`
	Total      PlayerTotals `json:"total"`
	LastSeen   int64        `json:"lastSeen"`
	Registered int64        `json:"registered"`
	Country    string       `json:"country"`
}

// PlaytimeHours converts the playtime counter to hours.
func (p PlayerStatistics) PlaytimeHours() float64 {
	return p.Total.Playtime / 3600
}

// BanStatus is the lifecycle state of a ban.
type BanStatus string

const (
	BanActive    BanStatus = "active"
	BanExpired   BanStatus = "expired"
	BanRemoved   BanStatus = "removed"
	BanPermanent BanStatus = "permanent"
)

// Ban is a ban record together with its evidence and moderation thread.
type Ban struct {
	ID             int64     `json:"id"`
	PlayerName     string    `json:"player_name"`
	AdminName      string    `json:"admin_name"`
	Reason         string    `json:"reason"`
	FormattedTime  string    `json:"formatted_time"`
	FormattedUntil string    `json:"formatted_until,omitempty"`
	Status         BanStatus `json:"status"`
	RemovedByUUID  string    `json:"removed_by_uuid,omitempty"`
	UnbannedByName string    `json:"unbanned_by_name,omitempty"`
	Comments       []Comment `json:"comments"`
	Proofs         []Proof   `json:"proofs"`
}

// Comment is a moderation comment on a ban. Older records carry the author in
// admin_name and the body in text.
type Comment struct {
	ID         int64  `json:"id"`
	BanID      int64  `json:"ban_id"`
	AuthorName string `json:"author_name,omitempty"`
	AdminName  string `json:"admin_name,omitempty"`
	Content    string `json:"content,omitempty"`
	Text       string `json:"text,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Author returns whichever author field is set.
func (c Comment) Author() string {
	if c.AuthorName != "" {
		return c.AuthorName
	}
	return c.AdminName
}

// Body returns whichever body field is set.
func (c Comment) Body() string {
	if c.Content != "" {
		return c.Content
	}
	return c.Text
}

// ProofType is the kind of evidence attached to a ban.
type ProofType string

const (
	ProofImage ProofType = "image"
	ProofVideo ProofType = "video"
)

// Proof is an evidence attachment on a ban.
type Proof struct {
	ID        int64     `json:"id"`
	BanID     int64     `json:"ban_id"`
	AdminName string    `json:"admin_name"`
	URL       string    `json:"url"`
	Type      ProofType `json:"type"`
	CreatedAt string    `json:"created_at"`
}

// BanPage is one page of the ban list.
type BanPage struct {
	Items      []Ban `json:"items"`
	Total      int   `json:"total"`
	Page       int   `json:"-"`
	TotalPages int   `json:"-"`
}

// PlayerStatus filters the player list.
type PlayerStatus string

const (
	PlayersAll     PlayerStatus = "all"
	PlayersOnline  PlayerStatus = "online"
	PlayersOffline PlayerStatus = "offline"
)

// Player is a roster entry.
type Player struct {
	Username  string       `json:"username"`
	UUID      string       `json:"uuid"`
	Playtime  string       `json:"playtime"`
	LastLogin string       `json:"lastLogin"`
	FirstJoin string       `json:"firstJoin"`
	Status    PlayerStatus `json:"status"`
}

// PlayerPage is one page of the roster.
type PlayerPage struct {
	Items []Player `json:"items"`
	Total int      `json:"total"`
	// Filtered is set when the API already applied the status filter.
	Filtered   bool `json:"filtered"`
	Page       int  `json:"-"`
	TotalPages int  `json:"-"`
}

// StaffMember is a staff account on one game server.
type StaffMember struct {
	Username    string     `json:"username"`
	UUID        string     `json:"uuid"`
	Role        Role       `json:"role"`
	Server      GameServer `json:"server"`
	Permissions []string   `json:"permissions"`
	LastActive  string     `json:"lastActive"`
}

// ActivityLog is one staff audit entry.
type ActivityLog struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Action    string `json:"action"`
	Target    string `json:"target,omitempty"`
	Timestamp string `json:"timestamp"`
}
