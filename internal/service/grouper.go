package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"wcircle.app/watchcircle/internal/model"
)

// GroupingWindow is the maximum distance between an activity and the primary
// of its group for the two to merge into one feed item.
const GroupingWindow = 5 * time.Minute

// CombinedActivity records one original constituent of a merged group so the
// client can still render the individual actions.
type CombinedActivity struct {
	Type string             `json:"type"`
	Data model.ActivityData `json:"data"`
}

// ActivityGroup is a run of activities for the same user and media merged for
// display. Derived at read time, never persisted.
type ActivityGroup struct {
	// Primary is the newest activity in the group; its timestamp orders the
	// group in the feed and its ID identifies the resulting feed item.
	Primary      model.Activity     `json:"primary"`
	ActivityType string             `json:"activity_type"`
	ActivityData model.ActivityData `json:"activity_data"`
	// Combined lists the original constituents in chronological order.
	// Empty for a single ungrouped activity.
	Combined []CombinedActivity `json:"combined_activities,omitempty"`
}

type indexedActivity struct {
	activity model.Activity
	index    int
}

// GroupActivities merges raw activity rows into display groups.
//
// Activities are bucketed by explicit GroupID when present, otherwise by
// (user, media). Within a bucket, sorted newest first, each ungrouped
// activity becomes a primary that absorbs subsequent activities while they
// fall within GroupingWindow of the primary itself. The comparison is always
// against the primary, never the previously absorbed member, so a group is a
// star around its primary rather than a sliding run.
//
// Activities with a zero timestamp or an empty media reference fail the
// precondition and are excluded from the output.
func GroupActivities(activities []model.Activity) []ActivityGroup {
	if len(activities) == 0 {
		return nil
	}

	buckets := make(map[string][]indexedActivity)
	var bucketOrder []string
	for i, act := range activities {
		if act.CreatedAt.IsZero() || act.MediaID == "" {
			continue
		}
		key := bucketKey(act)
		if _, seen := buckets[key]; !seen {
			bucketOrder = append(bucketOrder, key)
		}
		buckets[key] = append(buckets[key], indexedActivity{activity: act, index: i})
	}

	var groups []indexedGroup
	for _, key := range bucketOrder {
		bucket := buckets[key]

		// Newest first; stable sort keeps original input order on ties.
		sort.SliceStable(bucket, func(a, b int) bool {
			return bucket[a].activity.CreatedAt.After(bucket[b].activity.CreatedAt)
		})

		for i := 0; i < len(bucket); {
			primary := bucket[i]
			members := []indexedActivity{primary}

			j := i + 1
			for j < len(bucket) {
				gap := primary.activity.CreatedAt.Sub(bucket[j].activity.CreatedAt)
				if gap < 0 {
					gap = -gap
				}
				if gap > GroupingWindow {
					break
				}
				members = append(members, bucket[j])
				j++
			}
			i = j

			groups = append(groups, indexedGroup{
				group: buildGroup(members),
				index: primary.index,
			})
		}
	}

	// Flatten across buckets, newest primary first, input order on ties.
	sort.SliceStable(groups, func(a, b int) bool {
		ta, tb := groups[a].group.Primary.CreatedAt, groups[b].group.Primary.CreatedAt
		if ta.Equal(tb) {
			return groups[a].index < groups[b].index
		}
		return ta.After(tb)
	})

	out := make([]ActivityGroup, len(groups))
	for i, g := range groups {
		out[i] = g.group
	}
	return out
}

type indexedGroup struct {
	group ActivityGroup
	index int
}

func buildGroup(members []indexedActivity) ActivityGroup {
	primary := members[0].activity

	if len(members) == 1 {
		return ActivityGroup{
			Primary:      primary,
			ActivityType: primary.ActivityType,
			ActivityData: primary.ActivityData,
		}
	}

	// Merge in chronological order: members arrive newest first, so walk them
	// backwards. Later actions overwrite fields set by earlier ones.
	var merged model.ActivityData
	types := make([]string, 0, len(members))
	combined := make([]CombinedActivity, 0, len(members))
	for k := len(members) - 1; k >= 0; k-- {
		act := members[k].activity
		merged.Merge(act.ActivityData)
		types = append(types, act.ActivityType)
		combined = append(combined, CombinedActivity{
			Type: act.ActivityType,
			Data: act.ActivityData,
		})
	}

	return ActivityGroup{
		Primary: primary,
		// Repeats of the same type are kept on purpose: "rated+rated" tells
		// the client the user re-rated within the window.
		ActivityType: strings.Join(types, "+"),
		ActivityData: merged,
		Combined:     combined,
	}
}

func bucketKey(act model.Activity) string {
	if act.GroupID != nil && *act.GroupID != "" {
		return "g:" + *act.GroupID
	}
	return fmt.Sprintf("u:%s:%s", act.UserID, act.MediaID)
}
