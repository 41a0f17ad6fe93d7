// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package queries

import (
	"time"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
)

// Resource types, the first part of every key.
const (
	scansResource         = "scans"
	findingsResource      = "findings"
	projectsResource      = "projects"
	organizationsResource = "organizations"
	artifactsResource     = "artifacts"
	currentUserResource   = "currentUser"
)

// Stale times
const (
	scanListStaleTime     = 30 * time.Second
	scanSummaryStaleTime  = time.Minute
	findingListStaleTime  = 2 * time.Minute
	findingStaleTime      = 5 * time.Minute
	projectStaleTime      = 2 * time.Minute
	projectStatsStaleTime = time.Minute
	organizationStaleTime = 5 * time.Minute
	memberStaleTime       = 2 * time.Minute
	currentUserStaleTime  = 5 * time.Minute
	artifactStaleTime     = time.Minute
)

func AllScansKey() querycache.Key { return querycache.Key{scansResource} }

func ScanListKey(params model.ListScansParams) querycache.Key {
	return querycache.Key{scansResource, params}
}

func ScanKey(id string) querycache.Key { return querycache.Key{scansResource, id} }

func RecentScansKey(limit int) querycache.Key {
	return querycache.Key{scansResource, "recent", limit}
}

func ProjectScansKey(projectID string, limit int) querycache.Key {
	return querycache.Key{scansResource, "project", projectID, limit}
}

func ScanSummaryKey() querycache.Key { return querycache.Key{scansResource, "summary"} }

// ScanFindingsKey prefixes every finding key of a scan.
func ScanFindingsKey(scanID string) querycache.Key {
	return querycache.Key{findingsResource, scanID}
}

func FindingListKey(scanID string, filters model.FindingFilters) querycache.Key {
	return querycache.Key{findingsResource, scanID, filters}
}

func FindingKey(scanID, findingID string) querycache.Key {
	return querycache.Key{findingsResource, scanID, findingID}
}

func FindingStatsKey(scanID string) querycache.Key {
	return querycache.Key{findingsResource, scanID, "stats"}
}

func ProjectsKey() querycache.Key { return querycache.Key{projectsResource} }

func ProjectKey(id string) querycache.Key { return querycache.Key{projectsResource, id} }

func ProjectStatsKey(id string) querycache.Key {
	return querycache.Key{projectsResource, id, "stats"}
}

func OrganizationsKey() querycache.Key { return querycache.Key{organizationsResource} }

func OrganizationKey(id string) querycache.Key {
	return querycache.Key{organizationsResource, id}
}

func MembersKey(orgID string) querycache.Key {
	return querycache.Key{organizationsResource, orgID, "members"}
}

func CurrentUserKey() querycache.Key { return querycache.Key{currentUserResource} }

func ArtifactsKey(scanID string) querycache.Key {
	return querycache.Key{artifactsResource, scanID}
}
