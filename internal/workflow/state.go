package workflow

import (
	"time"

	"github.com/fpang/edu-studio/internal/lesson"
)

// State is a position on one of the two workflow axes.
type State string

// Publish axis.
const (
	StateIdle          State = "idle"
	StatePublishing    State = "publishing"
	StatePublished     State = "published"
	StatePublishFailed State = "publish_failed"
)

// Video axis. StateIdle is shared.
const (
	StateGeneratingVideo State = "generating_video"
	StateVideoReady      State = "video_ready"
	StateVideoFailed     State = "video_failed"
)

// InFlight reports whether the state is waiting on an external call.
func (s State) InFlight() bool {
	return s == StatePublishing || s == StateGeneratingVideo
}

// Publication is the artifact of a successful publish cycle. Quiz and Image
// always come from the same Draft.
type Publication struct {
	CycleID     string
	Draft       lesson.Draft
	Quiz        lesson.Quiz
	Image       lesson.Image
	PublishedAt time.Time
}

// Snapshot is a read-only copy of both axes, handed to renderers.
type Snapshot struct {
	Publish      State
	PublishCycle string
	Publication  *Publication
	PublishErr   string

	Video      State
	VideoTitle string
	VideoRef   *lesson.Video
	VideoErr   string
}

// Listener receives a Snapshot after every transition.
type Listener func(Snapshot)
