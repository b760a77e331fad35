package models

import "time"

// TrackMetadata carries the coarse per-track descriptors the mix engine
// consumes. The values come from a catalog service or from the estimate
// package; the engine treats them as ground truth and never recomputes
// them from audio.
type TrackMetadata struct {
	Name         string
	Duration     float64 // seconds
	SampleRate   int
	Tempo        float64 // BPM
	Key          string  // pitch class ("C".."B", sharps allowed) or "" when unknown
	Energy       float64 // 0..1
	Danceability float64 // 0..1
}

// Track pairs decoded audio with its metadata.
type Track struct {
	Meta   TrackMetadata
	Buffer *Buffer
}

// TrackRole identifies which side of the mix a track plays. The role
// fixes the default EQ preset of its processing chain and the section
// selection strategy.
type TrackRole int

const (
	// RoleLead is the track the mix opens on.
	RoleLead TrackRole = iota
	// RoleIncoming is the track blended in across the crossfade.
	RoleIncoming
)

func (r TrackRole) String() string {
	if r == RoleIncoming {
		return "track2"
	}
	return "track1"
}

// KeyCompatibility classifies how well two keys sit together.
type KeyCompatibility string

const (
	KeyPerfect     KeyCompatibility = "perfect"
	KeyGood        KeyCompatibility = "good"
	KeyModerate    KeyCompatibility = "moderate"
	KeyChallenging KeyCompatibility = "challenging"
	KeyUnknown     KeyCompatibility = "unknown"
)

// CompatibilityReport scores two tracks' mixability. Recomputed fresh
// for every mix request, never cached.
type CompatibilityReport struct {
	BPMDifference   float64
	Key             KeyCompatibility
	EnergyBalance   float64 // |energy1 - energy2|
	DurationRatio   float64 // min/max of the two durations
	Score           int     // 0..100
	Recommendations []string
}

// FeatureKind names one class of detection event.
type FeatureKind string

const (
	FeatureBassDrop     FeatureKind = "bass-drop"
	FeatureVocalPeak    FeatureKind = "vocal-peak"
	FeatureEnergyValley FeatureKind = "energy-valley"
	FeatureBuildUp      FeatureKind = "build-up"
	FeatureDropPoint    FeatureKind = "drop-point"
	FeatureBreakdown    FeatureKind = "breakdown"
)

// FeaturePoint is a single detection hit.
type FeaturePoint struct {
	Time      float64 // seconds within the track
	Intensity float64
	Kind      FeatureKind
}

// FeatureSet is the extractor output for one track. Absent detections
// are a nil pointer / empty slice, never an error.
type FeatureSet struct {
	BassDrop      *FeaturePoint
	VocalPeaks    []FeaturePoint
	EnergyValleys []FeaturePoint
	BuildUps      []FeaturePoint
	DropPoints    []FeaturePoint
	Breakdowns    []FeaturePoint
}

// SectionSelection identifies the sub-interval of a source track that
// will feed the renderer.
type SectionSelection struct {
	Role      TrackRole
	StartTime float64 // offset into the source track, seconds
	Duration  float64 // seconds
	Reason    string  // diagnostic only
}

// SectionType labels the automation intent of a timeline section.
type SectionType string

const (
	SectionSolo         SectionType = "solo"
	SectionBuildUp      SectionType = "build-up"
	SectionDrop         SectionType = "drop"
	SectionBreakdown    SectionType = "breakdown"
	SectionCrossfade    SectionType = "crossfade"
	SectionVocalOverlay SectionType = "vocal-overlay"
	SectionFinalDrop    SectionType = "final-drop"
)

// SectionTrack says which source signal(s) a section covers. "both"
// means temporal overlap of the two sources, not a data-model overlap.
type SectionTrack string

const (
	SectionTrack1 SectionTrack = "track1"
	SectionTrack2 SectionTrack = "track2"
	SectionBoth   SectionTrack = "both"
)

// Section is one named, time-bounded region of the output timeline.
type Section struct {
	Name  string       `json:"name"`
	Start float64      `json:"start"`
	End   float64      `json:"end"`
	Track SectionTrack `json:"track"`
	Type  SectionType  `json:"type"`
}

// Timeline is the planner output: a contiguous chain of sections plus
// the anchor scalars the renderer schedules automation around.
// Invariant: sections[i].End == sections[i+1].Start, sections[0].Start
// == 0, and the last End equals Duration.
type Timeline struct {
	Duration             float64   `json:"duration"`
	Track2Start          float64   `json:"track2Start"`
	CrossfadeStart       float64   `json:"crossfadeStart"`
	CrossfadeDuration    float64   `json:"crossfadeDuration"`
	VocalOverlayStart    float64   `json:"vocalOverlayStart,omitempty"`
	VocalOverlayDuration float64   `json:"vocalOverlayDuration,omitempty"`
	Sections             []Section `json:"sections"`
}

// HasVocalOverlay reports whether the planner scheduled an overlay.
func (t *Timeline) HasVocalOverlay() bool { return t.VocalOverlayDuration > 0 }

// RenderedMix is the complete result of one mix request. The caller
// owns it; the engine keeps no reference after returning.
type RenderedMix struct {
	Buffer        *Buffer
	Duration      float64
	SampleRate    int
	TrackNames    [2]string
	Timeline      Timeline
	Compatibility CompatibilityReport
	Features      [2]FeatureSet
	Selections    [2]SectionSelection
}

// MixRecord is the persisted summary of a rendered mix.
type MixRecord struct {
	ID               string
	Track1Name       string
	Track2Name       string
	Score            int
	KeyCompatibility KeyCompatibility
	Duration         float64
	OutputPath       string
	TimelineJSON     string
	CreatedAt        time.Time
}
