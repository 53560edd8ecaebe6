package control

import "testing"

func TestNext_TransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		current Mode
		trigger Trigger
		want    Mode
	}{
		{"command enters manual", Automatic, TriggerCommand, Manual},
		{"command keeps manual", Manual, TriggerCommand, Manual},
		{"override on enters manual", Automatic, TriggerOverrideOn, Manual},
		{"override off returns automatic", Manual, TriggerOverrideOff, Automatic},
		{"override off keeps automatic", Automatic, TriggerOverrideOff, Automatic},
		{"resume confirmed returns automatic", Manual, TriggerResumeConfirmed, Automatic},
		{"auto resumed push returns automatic", Manual, TriggerAutoResumed, Automatic},
		{"unknown trigger leaves mode", Manual, Trigger("noise"), Manual},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Next(tc.current, tc.trigger); got != tc.want {
				t.Fatalf("Next(%s, %s) = %s, want %s", tc.current, tc.trigger, got, tc.want)
			}
		})
	}
}
