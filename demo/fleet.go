/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package demo

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/recordgrid/core/columns"
	"github.com/google/recordgrid/core/rows"
	"github.com/google/recordgrid/core/tables"
)

// Fleet demo data: machines placed in region -> zone -> cluster.

var fleetRegions = []struct {
	region    string
	continent string
}{
	{"us-east", "Americas"},
	{"us-west", "Americas"},
	{"us-central", "Americas"},
	{"europe-west", "Europe"},
	{"europe-north", "Europe"},
	{"asia-east", "Asia-Pacific"},
	{"asia-south", "Asia-Pacific"},
	{"asia-northeast", "Asia-Pacific"},
}

const (
	zonesPerRegion  = 3
	clustersPerZone = 5
)

var (
	machineStatuses = []string{"healthy", "healthy", "healthy", "healthy", "healthy", "degraded", "dead", "repair"}
	cpuArchitecture = []string{"x86_64", "x86_64", "x86_64", "arm64"}
)

// FleetView groups machines by region, zone and cluster.
func FleetView() tables.ViewDef {
	return tables.ViewDef{
		Name:    "fleet",
		Title:   "Machine fleet",
		IDField: "machine",
		Columns: []columns.ColumnSpec{
			{ID: "continent", Title: "Continent"},
			{ID: "region", Title: "Region"},
			{ID: "zone", Title: "Zone"},
			{ID: "cluster", Title: "Cluster"},
			{ID: "machine", Title: "Machine"},
			{ID: "status", Title: "Status"},
			{ID: "cpu_arch", Title: "Architecture"},
			{ID: "cpu_cores", Title: "CPU Cores"},
			{ID: "memory_gb", Title: "Memory (GB)"},
			{ID: "disk_tb", Title: "Disk (TB)"},
			{ID: "utilization", Title: "Utilization"},
			{ID: "uptime_days", Title: "Uptime (days)"},
		},
		GroupLevels: []string{"continent", "region", "zone", "cluster"},
	}
}

// FleetRows generates about n machines, spread evenly over the clusters.
// The same seed yields the same fleet.
func FleetRows(n int, seed uint64) []rows.Row {
	clusters := len(fleetRegions) * zonesPerRegion * clustersPerZone
	perCluster := max(1, (n+clusters-1)/clusters)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]rows.Row, 0, perCluster*clusters)
	for _, r := range fleetRegions {
		for z := 0; z < zonesPerRegion; z++ {
			zone := fmt.Sprintf("%s-%c", r.region, 'a'+z)
			for c := 0; c < clustersPerZone; c++ {
				cluster := fmt.Sprintf("%s-c%d", zone, c)
				for m := 0; m < perCluster; m++ {
					out = append(out, machine(rng, r.continent, r.region, zone, cluster, m))
				}
			}
		}
	}
	return out
}

func machine(rng *rand.Rand, continent, region, zone, cluster string, i int) rows.Row {
	usage := 0.3 + rng.Float64()*0.6
	return rows.Row{
		"machine":     fmt.Sprintf("%s-m%03d", cluster, i),
		"continent":   continent,
		"region":      region,
		"zone":        zone,
		"cluster":     cluster,
		"status":      machineStatuses[rng.IntN(len(machineStatuses))],
		"cpu_arch":    cpuArchitecture[rng.IntN(len(cpuArchitecture))],
		"cpu_cores":   int64(64 + rng.IntN(64)),
		"memory_gb":   int64(256 + rng.IntN(512)),
		"disk_tb":     math.Round((2.0+rng.Float64()*6.0)*10) / 10,
		"utilization": fmt.Sprintf("%d%%", int(usage*100)),
		"uptime_days": int64(rng.IntN(365)),
	}
}
