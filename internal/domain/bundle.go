package domain

import "strings"

// Bundle is the closed set of catalog bundle tags. Unknown tags fall back
// to the defaults documented on each lookup below rather than failing.
type Bundle string

const (
	BundleFree              Bundle = "free"
	BundleHelloStarter      Bundle = "hello_starter"
	BundleJumpstart         Bundle = "jumpstart"
	BundleGrowGo            Bundle = "grow_go"
	BundleClimbKit          Bundle = "climb_kit"
	BundleKeepGoing         Bundle = "keep_going"
	BundleElevateEssentials Bundle = "elevate_essentials"
	BundleWorld             Bundle = "world"
)

var badgeClasses = map[Bundle]string{
	BundleFree:              "beginner",
	BundleHelloStarter:      "beginner",
	BundleJumpstart:         "beginner",
	BundleGrowGo:            "intermediate",
	BundleClimbKit:          "intermediate",
	BundleKeepGoing:         "intermediate",
	BundleElevateEssentials: "advanced",
	BundleWorld:             "bundle-badge",
}

var badgeTexts = map[Bundle]string{
	BundleFree:              "Free",
	BundleHelloStarter:      "Beginner",
	BundleJumpstart:         "Beginner",
	BundleGrowGo:            "Intermediate",
	BundleClimbKit:          "Intermediate",
	BundleKeepGoing:         "Intermediate",
	BundleElevateEssentials: "Advanced",
	BundleWorld:             "Best Value",
}

// BadgeClass returns the CSS badge class for the bundle; "beginner" for
// unrecognized tags.
func (b Bundle) BadgeClass() string {
	if c, ok := badgeClasses[b]; ok {
		return c
	}
	return "beginner"
}

// BadgeText returns the display badge label; "Course" for unrecognized tags.
func (b Bundle) BadgeText() string {
	if t, ok := badgeTexts[b]; ok {
		return t
	}
	return "Course"
}

// SortRank orders bundles for the catalog page: the free course first,
// everything else keeps its stored order.
func (b Bundle) SortRank() int {
	if b == BundleFree {
		return 0
	}
	return 1
}

// SplitLessonTitle splits a "Bundle Name - Lesson title" composite. When no
// separator is present the whole title is the lesson name and the bundle
// part is empty.
func SplitLessonTitle(title string) (bundleName, lessonName string) {
	if before, after, ok := strings.Cut(title, " - "); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", title
}
