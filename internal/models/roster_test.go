package models

import "testing"

func TestStageClass_KnownStages(t *testing.T) {
	seen := map[string]string{}
	for _, stage := range Stages {
		class := StageClass(stage)
		if class == "" {
			t.Fatalf("expected class for %q", stage)
		}
		if StageClass(stage) != class {
			t.Fatalf("class for %q is not deterministic", stage)
		}
		if other, ok := seen[class]; ok {
			t.Fatalf("stages %q and %q share class %q", other, stage, class)
		}
		seen[class] = stage
	}
}

func TestStageClass_UnknownStage(t *testing.T) {
	for _, stage := range []string{"", "sold", "Lost", " New Inquiry"} {
		if got := StageClass(stage); got != "" {
			t.Fatalf("StageClass(%q) = %q, want empty", stage, got)
		}
	}
}

func TestRosterMembership(t *testing.T) {
	r := DefaultRoster()
	if !r.IsAgent("Azam") || r.IsAgent("Bob") {
		t.Fatalf("unexpected agent membership")
	}
	if !r.IsStage(StageSold) || r.IsStage("Won") {
		t.Fatalf("unexpected stage membership")
	}

	// копия не должна менять пакетные списки
	r.Agents[0] = "changed"
	if DefaultAgents[0] == "changed" {
		t.Fatalf("DefaultRoster must copy agents")
	}
}

func TestFormatDate(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"2024-05-01", "5/1/2024"},
		{"2024-12-31T00:00:00Z", "12/31/2024"},
		{"2024-03-09 00:00:00+00", "3/9/2024"},
		{"", ""},
		{"yesterday", "yesterday"},
	} {
		if got := FormatDate(tc.in); got != tc.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInquiryApply(t *testing.T) {
	inq := Inquiry{ID: 1, Agent: "Azam", Stage: StageNewInquiry, AgentNotes: "x", Notes: "customer"}
	inq.Apply(map[string]any{ColumnStage: StageSold, ColumnAgentNotes: "y"})
	if inq.Agent != "Azam" || inq.Stage != StageSold || inq.AgentNotes != "y" || inq.Notes != "customer" {
		t.Fatalf("unexpected merge result: %+v", inq)
	}
}
