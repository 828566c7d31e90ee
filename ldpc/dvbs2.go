package ldpc

import (
	"fmt"
	"math/rand"

	mat "github.com/nathanhack/sparsemat"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

const (
	// DvbS2Normal and DvbS2Short are the DVB-S2 frame lengths.
	DvbS2Normal = 64800
	DvbS2Short  = 16200

	dvbS2Group = 360
)

type dvbS2Profile struct {
	k          int
	highDegree int
	highCount  int // information columns of highDegree, the rest have degree 3
}

var dvbS2Profiles = map[int]map[string]dvbS2Profile{
	DvbS2Normal: {
		"1/4":  {16200, 12, 5400},
		"1/3":  {21600, 12, 7200},
		"2/5":  {25920, 12, 8640},
		"1/2":  {32400, 8, 12960},
		"3/5":  {38880, 12, 12960},
		"2/3":  {43200, 13, 4320},
		"3/4":  {48600, 12, 5400},
		"4/5":  {51840, 11, 6480},
		"5/6":  {54000, 13, 5400},
		"8/9":  {57600, 4, 7200},
		"9/10": {58320, 4, 6480},
	},
	DvbS2Short: {
		"1/4": {3240, 12, 1800},
		"1/3": {5400, 12, 1800},
		"2/5": {6480, 12, 2160},
		"1/2": {7200, 8, 1800},
		"3/5": {9720, 12, 3240},
		"2/3": {10800, 13, 1080},
		"3/4": {11880, 12, 360},
		"4/5": {12600, 11, 1440},
		"5/6": {13320, 13, 360},
		"8/9": {14400, 4, 1800},
	},
}

// DvbS2Rates lists the code rates available for the frame length n.
func DvbS2Rates(n int) []string {
	var rates []string
	for rate := range dvbS2Profiles[n] {
		rates = append(rates, rate)
	}
	slices.Sort(rates)
	return rates
}

// DvbS2 creates an irregular repeat accumulate parity check matrix with the
// DVB-S2 layout for the frame length n and the code rate, for example "3/4".
// The degree profile follows the standard while the group address table is
// drawn from seed, use DvbS2FromTable for the normative tables.
func DvbS2(n int, rate string, seed int64) (mat.SparseMat, error) {
	profiles, ok := dvbS2Profiles[n]
	if !ok {
		return nil, fmt.Errorf("unsupported dvb-s2 frame length %v", n)
	}
	profile, ok := profiles[rate]
	if !ok {
		return nil, fmt.Errorf("unsupported dvb-s2 rate %v for frame length %v", rate, n)
	}
	table := dvbS2Table(n, profile, seed)
	logrus.Debugf("dvb-s2 n %v rate %v: k %v, %v columns of degree %v", n, rate, profile.k, profile.highCount, profile.highDegree)
	return DvbS2FromTable(n, profile.k, table)
}

// dvbS2Table draws one address per edge of each group of 360 information
// columns. Addresses cycle through every residue modulo q so that each check
// receives at least one information bit.
func dvbS2Table(n int, profile dvbS2Profile, seed int64) [][]int {
	r := rand.New(rand.NewSource(seed))
	parity := n - profile.k
	q := parity / dvbS2Group
	residues := r.Perm(q)
	next := 0

	table := make([][]int, profile.k/dvbS2Group)
	for g := range table {
		degree := 3
		if g*dvbS2Group < profile.highCount {
			degree = profile.highDegree
		}
		for len(table[g]) < degree {
			residue := residues[next%q]
			x := residue + q*r.Intn(dvbS2Group)
			if slices.Contains(table[g], x) {
				continue
			}
			table[g] = append(table[g], x)
			next++
		}
	}
	return table
}

// DvbS2FromTable creates the parity check matrix of an n bit code with k
// information bits. table[g] lists the check addresses of the first column of
// information group g, column i of the group adds i*q modulo n-k to each of them.
// The parity part is the dual diagonal accumulator.
func DvbS2FromTable(n, k int, table [][]int) (mat.SparseMat, error) {
	if k <= 0 || k >= n || k%dvbS2Group != 0 || (n-k)%dvbS2Group != 0 {
		return nil, fmt.Errorf("n (%v) and k (%v) must be multiples of %v with 0 < k < n", n, k, dvbS2Group)
	}
	if len(table) != k/dvbS2Group {
		return nil, fmt.Errorf("expected %v table rows but found %v", k/dvbS2Group, len(table))
	}
	parity := n - k
	q := parity / dvbS2Group

	H := mat.DOKMat(parity, n)
	for g, addresses := range table {
		for _, x := range addresses {
			if x < 0 || x >= parity {
				return nil, fmt.Errorf("address %v of group %v out of range", x, g)
			}
			for i := 0; i < dvbS2Group; i++ {
				H.Set((x+i*q)%parity, g*dvbS2Group+i, 1)
			}
		}
	}
	for i := 0; i < parity; i++ {
		H.Set(i, k+i, 1)
		if i > 0 {
			H.Set(i, k+i-1, 1)
		}
	}
	return mat.CSRMatCopy(H), nil
}
