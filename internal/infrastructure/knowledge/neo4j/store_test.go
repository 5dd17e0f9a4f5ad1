package neo4j

import "testing"

func TestSanitizeLucene(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain words", "plain words"},
		{"what is AND/OR?", "what is AND OR"},
		{`quoted "phrase" ~fuzzy`, "quoted  phrase   fuzzy"},
		{"+-&|!(){}[]^\"~*?:\\/", ""},
	}
	for _, tc := range cases {
		if got := sanitizeLucene(tc.in); got != tc.want {
			t.Errorf("sanitizeLucene(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
