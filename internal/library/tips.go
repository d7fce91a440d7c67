package library

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tessro/station/internal/core"
)

// MaxTips is the number of tips kept in history.
const MaxTips = 100

// Token is a currency a tip can be sent in.
type Token string

const (
	TokenETH   Token = "ETH"
	TokenAUDIO Token = "AUDIO"
	TokenBSTN  Token = "BSTN"
)

// Tokens lists the supported tip currencies.
var Tokens = []Token{TokenETH, TokenAUDIO, TokenBSTN}

// ParseToken matches a token symbol case-insensitively.
func ParseToken(s string) (Token, error) {
	for _, t := range Tokens {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown token %q (want ETH, AUDIO or BSTN)", s)
}

// Tip is one recorded tip.
type Tip struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	ArtistID     string    `json:"artist_id"`
	ArtistName   string    `json:"artist_name"`
	ArtistHandle string    `json:"artist_handle"`
	TrackID      string    `json:"track_id"`
	TrackTitle   string    `json:"track_title"`
	Amount       string    `json:"amount"`
	Token        Token     `json:"token"`
	TxHash       string    `json:"tx_hash,omitempty"`
	Tipper       string    `json:"tipper"`
}

// Value returns the numeric amount, or 0 when it does not parse.
func (t Tip) Value() float64 {
	v, err := strconv.ParseFloat(t.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

// ArtistTotal aggregates the tips sent to one artist.
type ArtistTotal struct {
	ArtistID     string  `json:"artist_id"`
	ArtistName   string  `json:"artist_name"`
	ArtistHandle string  `json:"artist_handle"`
	TipCount     int     `json:"tip_count"`
	TotalAmount  float64 `json:"total_amount"`
}

// TipStats summarizes the tip history.
type TipStats struct {
	TotalTips    int               `json:"total_tips"`
	TotalByToken map[Token]float64 `json:"total_by_token"`
	TopArtists   []ArtistTotal     `json:"top_artists"`
	RecentTips   []Tip             `json:"recent_tips"`
}

// TipRequest describes a tip to record.
type TipRequest struct {
	Track  core.Track
	Amount string
	Token  Token
	Tipper string
	TxHash string
}

func (l *Library) tips() ([]Tip, error) {
	var tips []Tip
	if err := l.load(keyTips, &tips); err != nil {
		return nil, err
	}
	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Timestamp.After(tips[j].Timestamp)
	})
	return tips, nil
}

// AddTip records a tip and returns the stored record.
func (l *Library) AddTip(req TipRequest) (Tip, error) {
	if _, err := strconv.ParseFloat(req.Amount, 64); err != nil {
		return Tip{}, fmt.Errorf("invalid tip amount %q", req.Amount)
	}
	if _, err := ParseToken(string(req.Token)); err != nil {
		return Tip{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tips, err := l.tips()
	if err != nil {
		return Tip{}, err
	}
	tip := Tip{
		ID:           uuid.NewString(),
		Timestamp:    l.now(),
		ArtistID:     req.Track.Artist.ID,
		ArtistName:   req.Track.Artist.Name,
		ArtistHandle: req.Track.Artist.Handle,
		TrackID:      req.Track.ID,
		TrackTitle:   req.Track.Title,
		Amount:       req.Amount,
		Token:        req.Token,
		TxHash:       req.TxHash,
		Tipper:       req.Tipper,
	}
	tips = append([]Tip{tip}, tips...)
	if len(tips) > MaxTips {
		tips = tips[:MaxTips]
	}
	if err := l.save(keyTips, tips); err != nil {
		return Tip{}, err
	}
	return tip, nil
}

// Tips returns the tip history, newest first.
func (l *Library) Tips() ([]Tip, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tips()
}

// ArtistTips returns the tips sent to artistID.
func (l *Library) ArtistTips(artistID string) ([]Tip, error) {
	tips, err := l.Tips()
	if err != nil {
		return nil, err
	}
	return lo.Filter(tips, func(t Tip, _ int) bool { return t.ArtistID == artistID }), nil
}

// TrackTips returns the tips sent for trackID.
func (l *Library) TrackTips(trackID string) ([]Tip, error) {
	tips, err := l.Tips()
	if err != nil {
		return nil, err
	}
	return lo.Filter(tips, func(t Tip, _ int) bool { return t.TrackID == trackID }), nil
}

// TipsBySender returns the tips sent from wallet, matched case-insensitively.
func (l *Library) TipsBySender(wallet string) ([]Tip, error) {
	tips, err := l.Tips()
	if err != nil {
		return nil, err
	}
	return lo.Filter(tips, func(t Tip, _ int) bool { return strings.EqualFold(t.Tipper, wallet) }), nil
}

// TipStats computes totals per token and the ten most tipped artists.
func (l *Library) TipStats() (TipStats, error) {
	tips, err := l.Tips()
	if err != nil {
		return TipStats{}, err
	}
	return ComputeTipStats(tips), nil
}

// ComputeTipStats summarizes tips, which must be sorted newest first.
func ComputeTipStats(tips []Tip) TipStats {
	stats := TipStats{
		TotalTips:    len(tips),
		TotalByToken: make(map[Token]float64, len(Tokens)),
	}
	for _, t := range Tokens {
		stats.TotalByToken[t] = 0
	}

	byArtist := make(map[string]*ArtistTotal)
	var order []string
	for _, tip := range tips {
		v := tip.Value()
		stats.TotalByToken[tip.Token] += v

		a, ok := byArtist[tip.ArtistID]
		if !ok {
			a = &ArtistTotal{
				ArtistID:     tip.ArtistID,
				ArtistName:   tip.ArtistName,
				ArtistHandle: tip.ArtistHandle,
			}
			byArtist[tip.ArtistID] = a
			order = append(order, tip.ArtistID)
		}
		a.TipCount++
		a.TotalAmount += v
	}

	top := lo.Map(order, func(id string, _ int) ArtistTotal { return *byArtist[id] })
	sort.SliceStable(top, func(i, j int) bool { return top[i].TotalAmount > top[j].TotalAmount })
	if len(top) > 10 {
		top = top[:10]
	}
	stats.TopArtists = top

	recent := tips
	if len(recent) > 10 {
		recent = recent[:10]
	}
	stats.RecentTips = recent
	return stats
}

// ClearTips removes the tip history.
func (l *Library) ClearTips() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Delete(bucket, keyTips)
}

// ExportTips returns the tip history as indented JSON.
func (l *Library) ExportTips() ([]byte, error) {
	tips, err := l.Tips()
	if err != nil {
		return nil, err
	}
	if tips == nil {
		tips = []Tip{}
	}
	return json.MarshalIndent(tips, "", "  ")
}
