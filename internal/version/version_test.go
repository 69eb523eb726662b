package version

import "testing"

func TestParse(t *testing.T) {
	testCases := []struct {
		raw  string
		want AppVersion
	}{
		{"1.2.3", AppVersion{Major: 1, Minor: 2, Build: 3}},
		{"v2.0", AppVersion{Major: 2}},
		{"v1.4.7-rc.1", AppVersion{Major: 1, Minor: 4, Build: 7}},
		{"dev", AppVersion{}},
		{"", AppVersion{}},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			if got := Parse(tc.raw); got != tc.want {
				t.Fatalf("期望 %v，得到 %v", tc.want, got)
			}
		})
	}
}

func TestCurrentIsStable(t *testing.T) {
	first := Current()
	prev := Version
	Version = "9.9.9"
	t.Cleanup(func() { Version = prev })

	for i := 0; i < 3; i++ {
		if got := Current(); got != first {
			t.Fatalf("Current 应在进程内保持不变: %v != %v", got, first)
		}
	}
}

func TestAppVersionString(t *testing.T) {
	v := AppVersion{Major: 1, Minor: 2, Build: 3}
	if v.String() != "1.2.3.0" {
		t.Fatalf("格式化结果不正确: %s", v.String())
	}
}
