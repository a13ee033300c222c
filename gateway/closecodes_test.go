package gateway

import "testing"

func TestActionForCloseCode(t *testing.T) {
	cases := []struct {
		code int
		want ReconnectAction
	}{
		{4000, ActionResume},
		{4001, ActionResume},
		{4002, ActionResume},
		{4003, ActionResume},
		{4005, ActionResume},
		{4008, ActionResume},
		{4004, ActionFatal},
		{4007, ActionReidentify},
		{4009, ActionReidentify},
		{4010, ActionFatal},
		{4011, ActionFatal},
		{4012, ActionFatal},
		{4013, ActionFatal},
		{4014, ActionFatal},
		// unlisted codes, including the synthetic local-timeout code 0,
		// default to resume.
		{0, ActionResume},
		{1006, ActionResume},
		{9999, ActionResume},
	}

	for _, c := range cases {
		if got := ActionForCloseCode(c.code); got != c.want {
			t.Errorf("ActionForCloseCode(%d) = %v, want %v", c.code, got, c.want)
		}
	}
}
