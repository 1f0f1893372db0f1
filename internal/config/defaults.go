package config

const (
	defaultVideosDir       = "~/.local/share/clipset/videos"
	defaultOutputDir       = "~/.local/share/clipset/data"
	defaultDatasetDir      = "~/.local/share/clipset/dataset"
	defaultLogDir          = "~/.local/share/clipset/logs"
	defaultFetchBackend    = BackendYouTube
	defaultFetchQuality    = "360p"
	defaultFetchWorkers    = 8
	defaultURLTemplate     = "https://www.youtube.com/watch?v=%s"
	defaultYtdlpBinary     = "yt-dlp"
	defaultDurationSeconds = 5
	defaultSampleRate      = 22050
	defaultAudioBitrate    = "50k"
	defaultTruncation      = TruncationTruncate
	defaultFailurePolicy   = FailurePolicyItem
	defaultInputFormat     = InputPlain
	defaultFFmpegBinary    = "ffmpeg"
	defaultFFprobeBinary   = "ffprobe"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Recognized enum values.
const (
	BackendYouTube = "youtube"
	BackendYtdlp   = "ytdlp"

	TruncationTruncate = "truncate"
	TruncationStrict   = "strict"

	FailurePolicyItem    = "item"
	FailurePolicySession = "session"

	InputPlain    = "plain"
	InputVGGSound = "vggsound"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideosDir:  defaultVideosDir,
			OutputDir:  defaultOutputDir,
			DatasetDir: defaultDatasetDir,
			LogDir:     defaultLogDir,
		},
		Fetch: Fetch{
			Backend:     defaultFetchBackend,
			Quality:     defaultFetchQuality,
			Workers:     defaultFetchWorkers,
			URLTemplate: defaultURLTemplate,
			YtdlpBinary: defaultYtdlpBinary,
		},
		Sampling: Sampling{
			DurationSeconds: defaultDurationSeconds,
			SampleRate:      defaultSampleRate,
			AudioBitrate:    defaultAudioBitrate,
			Truncation:      defaultTruncation,
		},
		Extraction: Extraction{
			FailurePolicy: defaultFailurePolicy,
		},
		Input: Input{
			Format: defaultInputFormat,
		},
		Media: Media{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
