package ir

// ObjectDef declares a temporal object so that a journal can recreate it.
// Times are nanoseconds.
type ObjectDef struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	Start      int64    `json:"start"`
	Duration   int64    `json:"duration"`
	MediaStart int64    `json:"media_start"`
	Brother    string   `json:"brother,omitempty"`
	Settings   *Profile `json:"settings,omitempty"`
}

// Profile is a native export profile. Zero fields are unset.
type Profile struct {
	VideoWidth    int64 `json:"video_width,omitempty"`
	VideoHeight   int64 `json:"video_height,omitempty"`
	VideoParNum   int64 `json:"video_par_num,omitempty"`
	VideoParDen   int64 `json:"video_par_den,omitempty"`
	VideoRateNum  int64 `json:"video_rate_num,omitempty"`
	VideoRateDen  int64 `json:"video_rate_den,omitempty"`
	AudioRate     int64 `json:"audio_rate,omitempty"`
	AudioChannels int64 `json:"audio_channels,omitempty"`
	AudioDepth    int64 `json:"audio_depth,omitempty"`
}

// Command is one editing operation applied to a composition.
type Command struct {
	ID          string `json:"id"` // content-addressed, see CommandID
	Session     string `json:"session"`
	Seq         int64  `json:"seq"`
	Op          string `json:"op"`
	Composition string `json:"composition"`
	Args        Object `json:"args"`
}

// Outcome statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Outcome records how a command ended and the timeline state it left.
type Outcome struct {
	CommandID string `json:"command_id"`
	Seq       int64  `json:"seq"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
	Digest    string `json:"digest"`
}

// OK reports whether the command succeeded.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// Notification is a composition event delivered while a command ran.
type Notification struct {
	CommandID   string   `json:"command_id"`
	Seq         int64    `json:"seq"`
	Composition string   `json:"composition"`
	Event       string   `json:"event"`
	Object      string   `json:"object,omitempty"`
	Condensed   []string `json:"condensed,omitempty"`
}

// Entry is one object of a snapshot.
type Entry struct {
	ID       string `json:"id"`
	Start    int64  `json:"start"`
	Duration int64  `json:"duration"`
	Priority int64  `json:"priority"`
}

// CompositionSnapshot is the observable state of one composition.
type CompositionSnapshot struct {
	Name      string  `json:"name"`
	Condensed []Entry `json:"condensed"`
	Global    []Entry `json:"global"`
	Simple    []Entry `json:"simple"`
	Complex   []Entry `json:"complex"`
}

// Snapshot is the observable state of a timeline after a command.
type Snapshot struct {
	Compositions []CompositionSnapshot `json:"compositions"`
}

func (e Entry) toValue() Value {
	return Object{
		"id":       String(e.ID),
		"start":    Int(e.Start),
		"duration": Int(e.Duration),
		"priority": Int(e.Priority),
	}
}

func entries(list []Entry) Array {
	arr := make(Array, len(list))
	for i, e := range list {
		arr[i] = e.toValue()
	}
	return arr
}

// Value converts the snapshot for canonical encoding.
func (s Snapshot) Value() Value {
	comps := make(Array, len(s.Compositions))
	for i, c := range s.Compositions {
		comps[i] = Object{
			"name":      String(c.Name),
			"condensed": entries(c.Condensed),
			"global":    entries(c.Global),
			"simple":    entries(c.Simple),
			"complex":   entries(c.Complex),
		}
	}
	return Object{"compositions": comps}
}
