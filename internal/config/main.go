package config

import (
	"time"

	"github.com/derek750/Beat-Shooter/internal/game"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	Audio  = kingpin.Arg("audio", "Audio file path or URL for the session").Required().String()
	Input  = kingpin.Flag("input", "Pointer source: hand, color or hardware").Default("hardware").Short('i').Enum("hand", "color", "hardware")
	APIURL = kingpin.Flag("api", "Base URL of the beats/tiles/cv services").Default("http://localhost:8000").String()
	ESPURL = kingpin.Flag("esp32", "WebSocket URL of the controller bridge").Default("ws://localhost:8001/esp32/ws").String()

	CameraURL    = kingpin.Flag("camera", "HTTP endpoint returning a JPEG camera still").Default("http://localhost:8080/frame.jpg").String()
	LandmarksURL = kingpin.Flag("landmarks", "HTTP endpoint of the hand landmark model").Default("http://localhost:8000/hands/detect").String()

	Width  = kingpin.Flag("width", "Canvas width in pixels").Default("1280").Float64()
	Height = kingpin.Flag("height", "Canvas height in pixels").Default("720").Float64()

	FadeIn   = kingpin.Flag("fade-in", "Tile fade-in duration").Default("50ms").Duration()
	Visible  = kingpin.Flag("visible", "Tile full-opacity duration").Default("4s").Duration()
	FadeOut  = kingpin.Flag("fade-out", "Tile fade-out duration").Default("400ms").Duration()
	EndDelay = kingpin.Flag("end-delay", "Delay after the last tile before the session ends").Default("3s").Duration()

	Countdown   = kingpin.Flag("countdown", "Countdown seconds before playback").Default("5").Int()
	TileRadius  = kingpin.Flag("tile-radius", "Base tile radius in pixels").Default("48").Float64()
	EnergyScale = kingpin.Flag("energy-scale", "Radius growth per unit of beat energy").Default("0.6").Float64()
	BaseOpacity = kingpin.Flag("base-opacity", "Peak tile opacity").Default("0.85").Float64()

	TileWindow  = kingpin.Flag("tile-window", "Neighbouring tiles, by index, that honour the spacing radius").Default("6").Int()
	TileSpacing = kingpin.Flag("tile-spacing", "Minimum pixel distance between neighbouring tiles").Default("120").Float64()

	FallbackSpacing = kingpin.Flag("fallback-spacing", "Display-time spacing of the synthesized schedule").Default("500ms").Duration()

	CVInterval = kingpin.Flag("cv-interval", "Colour tracking poll period").Default("66ms").Duration()
	KeepAlive  = kingpin.Flag("keep-alive", "Controller keep-alive period").Default("5s").Duration()
	Debounce   = kingpin.Flag("debounce", "Button press refractory window").Default("80ms").Duration()

	SetupTimeout = kingpin.Flag("setup-timeout", "Per-request timeout for the setup calls").Default("10s").Duration()
	SetupRetries = kingpin.Flag("setup-retries", "Retries per setup call before falling back").Default("1").Int()
	RetryBackoff = kingpin.Flag("retry-backoff", "Pause between setup retries").Default("500ms").Duration()

	Redials     = kingpin.Flag("redials", "Controller reconnect attempts after an unexpected close").Default("5").Int()
	RedialDelay = kingpin.Flag("redial-delay", "Pause between controller reconnect attempts").Default("2s").Duration()

	CrosshairZ = kingpin.Flag("crosshair-z", "Assumed wrist depth for the aim ray").Default("0.5").Float64()

	Judgements []game.Judgement
)

// Parse resolves the command line. Called from main, not init, so test
// binaries never trip over the required audio argument.
func Parse() {
	kingpin.Version("0.1.0")
	kingpin.Parse()
}

func init() {
	Judgements = []game.Judgement{
		{Window: 50 * time.Millisecond, Name: "Exact"},
		{Window: 150 * time.Millisecond, Name: "Great"},
		{Window: 400 * time.Millisecond, Name: "Good"},
		{Window: time.Second, Name: "Okay"},
		{Window: -1, Name: "Miss"},
	}
}
