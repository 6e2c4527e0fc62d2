package periodtab

import (
	"bytes"
	"fmt"
	"io/fs"
	"math"

	"github.com/ngrash/go-zoned/tzif"
)

// Load builds a table from a tree of compiled TZif files, such as
// os.DirFS("/usr/share/zoneinfo"). The path of each TZif file below the root
// becomes its canonical zone name. Files that do not start with the TZif
// magic are skipped, so the auxiliary files of a zoneinfo installation are
// tolerated. Links may be nil.
func Load(fsys fs.FS, links map[string]string) (*Table, error) {
	zones := make(map[string][]Period)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		if !bytes.HasPrefix(b, tzif.Magic[:]) {
			return nil
		}
		f, err := tzif.Decode(bytes.NewReader(b))
		if err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
		if err := tzif.Validate(f); err != nil {
			return fmt.Errorf("decoding %s: invalid tzif: %w", path, err)
		}
		zones[path] = ExpandPeriods(f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("no TZif files found")
	}
	return New(zones, links)
}

// ExpandPeriods converts the transition sequence of a TZif file into a
// contiguous list of periods covering all of time. The last local time type
// is extended indefinitely; the footer TZ string is not evaluated.
func ExpandPeriods(f tzif.File) []Period {
	if len(f.Transitions) == 0 {
		return []Period{periodOf(f, firstStdType(f), math.MinInt64, math.MaxInt64, 0)}
	}

	ps := make([]Period, 0, len(f.Transitions)+1)
	lastStd, haveStd := int64(0), false

	// Before the first transition the zone is on its first standard type.
	first := firstStdType(f)
	if !first.Dst {
		lastStd, haveStd = int64(first.Utoff), true
	}
	ps = append(ps, periodOf(f, first, math.MinInt64, f.Transitions[0], 0))

	for i, start := range f.Transitions {
		end := int64(math.MaxInt64)
		if i+1 < len(f.Transitions) {
			end = f.Transitions[i+1]
		}
		lt := f.Types[f.TransitionTypes[i]]
		var save int64
		if lt.Dst {
			if haveStd {
				save = int64(lt.Utoff) - lastStd
			} else {
				save = 3600 // conventional fallback when no standard type precedes
			}
		} else {
			lastStd, haveStd = int64(lt.Utoff), true
		}
		ps = append(ps, periodOf(f, lt, start, end, save))
	}
	return ps
}

// firstStdType returns the local time type in effect before the first
// transition: the first standard type, or the first type if all are DST.
func firstStdType(f tzif.File) tzif.LocalTimeType {
	for _, lt := range f.Types {
		if !lt.Dst {
			return lt
		}
	}
	return f.Types[0]
}

func periodOf(f tzif.File, lt tzif.LocalTimeType, start, end, save int64) Period {
	return Period{
		Start:     start,
		End:       end,
		UTCOffset: int64(lt.Utoff) - save,
		DSTOffset: save,
		Abbr:      f.Designation(lt.Idx),
		IsDST:     lt.Dst,
	}
}
