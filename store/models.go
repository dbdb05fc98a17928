package store

type Photo struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Album    string `json:"album"`
	Caption  string `json:"caption,omitempty"`
	Selected bool   `json:"selected"`
}

type Settings struct {
	ShuffleEnabled    bool   `json:"shuffle_enabled"`
	TransitionSeconds int    `json:"transition_seconds"`
	SleepEnabled      bool   `json:"sleep_enabled"`
	SleepStart        string `json:"sleep_start"`
	SleepEnd          string `json:"sleep_end"`
	Brightness        int    `json:"brightness"`
}

type AlbumInfo struct {
	Name      string `json:"name"`
	NumPhotos int    `json:"num_photos"`
}

type LibraryCounts struct {
	NumPhotos int `json:"num_photos"`
	NumAlbums int `json:"num_albums"`
}
