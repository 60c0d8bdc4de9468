package scanner

import "path"

// Merge combines records from several roots into one synthesis input. Records
// are taken in the given order, so the primary root should come first. Sample
// paths are prefixed with the root label and the limits are reapplied.
func Merge(limits Limits, labels []string, records []Record) Record {
	merged := EmptyRecord()

	for i, rec := range records {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		merged.ContextCount += rec.ContextCount
		merged.AssetCount += rec.AssetCount
		if rec.ScannedAt.After(merged.ScannedAt) {
			merged.ScannedAt = rec.ScannedAt
		}

		for _, sn := range rec.ContextSnippets {
			if len(merged.ContextSnippets) >= limits.MaxSnippets {
				break
			}
			sn.Path = join(label, sn.Path)
			merged.ContextSnippets = append(merged.ContextSnippets, sn)
		}
		for _, a := range rec.Assets {
			if len(merged.Assets) >= limits.MaxAssets {
				break
			}
			a.Path = join(label, a.Path)
			merged.Assets = append(merged.Assets, a)
		}
		for _, fp := range rec.ProjectFingerprints {
			fp.File = join(label, fp.File)
			merged.ProjectFingerprints = append(merged.ProjectFingerprints, fp)
		}
	}

	return merged
}

func join(label, p string) string {
	if label == "" {
		return p
	}
	return path.Join(label, p)
}
