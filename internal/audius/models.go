package audius

// Images maps a size key such as "480x480" to an image URL.
type Images map[string]string

// pick returns the first size present in order.
func (im Images) pick(sizes ...string) string {
	for _, s := range sizes {
		if u := im[s]; u != "" {
			return u
		}
	}
	return ""
}

// User is an Audius user as returned by /v1/users.
type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Handle         string   `json:"handle"`
	IsVerified     bool     `json:"is_verified"`
	ProfilePicture Images   `json:"profile_picture"`
	CoverPhoto     Images   `json:"cover_photo"`
	Bio            string   `json:"bio"`
	Location       string   `json:"location"`
	FollowerCount  int      `json:"follower_count"`
	FolloweeCount  int      `json:"followee_count"`
	TrackCount     int      `json:"track_count"`
	PlaylistCount  int      `json:"playlist_count"`
	AlbumCount     int      `json:"album_count"`
	SupporterCount int      `json:"supporter_count"`
	Wallets        []string `json:"associated_wallets"`
	TwitterHandle  string   `json:"twitter_handle"`
	Website        string   `json:"website"`
}

// Track is an Audius track as returned by /v1/tracks.
type Track struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Permalink     string `json:"permalink"`
	Duration      int    `json:"duration"` // seconds
	User          User   `json:"user"`
	Artwork       Images `json:"artwork"`
	PlayCount     int    `json:"play_count"`
	FavoriteCount int    `json:"favorite_count"`
	RepostCount   int    `json:"repost_count"`
	Genre         string `json:"genre"`
	Mood          string `json:"mood"`
	Tags          string `json:"tags"`
	Description   string `json:"description"`
	ReleaseDate   string `json:"release_date"`
	IsUnlisted    bool   `json:"is_unlisted"`
}

// response is the envelope around every API payload.
type response[T any] struct {
	Data T `json:"data"`
}
