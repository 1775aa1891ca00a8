package proposal

import (
	"reflect"
	"testing"
)

func TestExtractJSONVariants(t *testing.T) {
	body := `{"clips":[{"title":"T","hook":"h","segments":[{"start":10,"end":35}]}]}`

	want := []Clip{
		{Title: "T", Hook: "h", Segments: []Span{{Start: 10, End: 35}}},
	}

	tests := []struct {
		name string
		text string
	}{
		{
			name: "fenced code block",
			text: "```json\n" + body + "\n```",
		},
		{
			name: "fence without language tag",
			text: "```\n" + body + "\n```",
		},
		{
			name: "surrounded by prose",
			text: "Here are the clips you asked for:\n" + body + "\nHope that helps!",
		},
		{
			name: "trailing comma",
			text: `{"clips":[{"title":"T","hook":"h","segments":[{"start":10,"end":35},]}]}`,
		},
		{
			name: "think preamble",
			text: "<think>let me consider {the} options</think>\n" + body,
		},
		{
			name: "bare response",
			text: body,
		},
		{
			name: "zero-width space",
			text: "\u200b" + body,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonText, ok := ExtractJSON(tt.text)
			if !ok {
				t.Fatalf("no JSON extracted from %q", tt.text)
			}

			clips, err := DecodeClips(jsonText)
			if err != nil {
				t.Fatalf("DecodeClips failed: %v", err)
			}
			if !reflect.DeepEqual(clips, want) {
				t.Errorf("got %+v, want %+v", clips, want)
			}
		})
	}
}

func TestExtractJSONBareArray(t *testing.T) {
	text := `The segments are: [{"title":"x","start":5,"end":25}] as requested.`

	jsonText, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("no JSON extracted")
	}

	clips, err := DecodeClips(jsonText)
	if err != nil {
		t.Fatalf("DecodeClips failed: %v", err)
	}

	want := []Clip{
		{Title: "x", Hook: "", Segments: []Span{{Start: 5, End: 25}}},
	}
	if !reflect.DeepEqual(clips, want) {
		t.Errorf("got %+v, want %+v", clips, want)
	}
}

func TestExtractJSONPrefersClipsObject(t *testing.T) {
	text := `{"note":"ignore me"} and then {"clips":[{"title":"y","segments":[{"start":1,"end":9}]}]}`

	jsonText, ok := ExtractJSON(text)
	if !ok {
		t.Fatal("no JSON extracted")
	}

	clips, err := DecodeClips(jsonText)
	if err != nil {
		t.Fatalf("DecodeClips failed: %v", err)
	}
	if len(clips) != 1 || clips[0].Title != "y" {
		t.Errorf("wrong object selected: %+v", clips)
	}
}

func TestExtractJSONGarbage(t *testing.T) {
	if _, ok := ExtractJSON("no json anywhere in this text"); ok {
		t.Error("expected extraction failure for plain prose")
	}
	if _, ok := ExtractJSON("almost { but not } quite {{{"); ok {
		t.Error("expected extraction failure for unbalanced noise")
	}
}

func TestDecodeClipsCoercion(t *testing.T) {
	jsonText := `{"clips":[{"title":"strings","segments":[{"start":"10","end":"35.5"}]}]}`

	clips, err := DecodeClips(jsonText)
	if err != nil {
		t.Fatalf("DecodeClips failed: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(clips))
	}

	seg := clips[0].Segments[0]
	if seg.Start != 10 || seg.End != 35.5 {
		t.Errorf("string timestamps not coerced: %+v", seg)
	}
}

func TestDecodeClipsFlatShape(t *testing.T) {
	jsonText := `{"clips":[{"start":"10","end":"5","title":"x"}]}`

	clips, err := DecodeClips(jsonText)
	if err != nil {
		t.Fatalf("DecodeClips failed: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(clips))
	}

	want := Clip{Title: "x", Hook: "", Segments: []Span{{Start: 10, End: 5}}}
	if !reflect.DeepEqual(clips[0], want) {
		t.Errorf("got %+v, want %+v", clips[0], want)
	}
}

func TestDecodeClipsDefaults(t *testing.T) {
	jsonText := `{"clips":[{"segments":[{"start":0,"end":20}]}]}`

	clips, err := DecodeClips(jsonText)
	if err != nil {
		t.Fatalf("DecodeClips failed: %v", err)
	}
	if clips[0].Title != "Untitled" {
		t.Errorf("expected default title, got %q", clips[0].Title)
	}
	if clips[0].Hook != "" {
		t.Errorf("expected empty hook, got %q", clips[0].Hook)
	}
}

func TestDecodeClipsDropsInvalid(t *testing.T) {
	jsonText := `{"clips":[
		{"title":"good","segments":[{"start":1,"end":2},{"start":"x","end":3}]},
		{"title":"empty","segments":[{"start":"a","end":"b"}]},
		{"title":"no timing"}
	]}`

	clips, err := DecodeClips(jsonText)
	if err != nil {
		t.Fatalf("DecodeClips failed: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("expected 1 surviving clip, got %d: %+v", len(clips), clips)
	}
	if len(clips[0].Segments) != 1 {
		t.Errorf("uncoercible span not dropped: %+v", clips[0].Segments)
	}
}

func TestDecodeClipsBadTopLevel(t *testing.T) {
	if _, err := DecodeClips(`"just a string"`); err == nil {
		t.Error("expected error for scalar top level")
	}
}

func TestClipDuration(t *testing.T) {
	clip := Clip{Segments: []Span{{Start: 0, End: 10}, {Start: 30, End: 45}}}
	if got := clip.Duration(); got != 25 {
		t.Errorf("expected duration 25, got %v", got)
	}
}
