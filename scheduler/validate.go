package scheduler

import "mailramp/models"

// ValidateAccounts confirms every rotation id exists in the pool and is
// SMTP-verified. Returns a *ValidationError listing the offending ids,
// or nil when the rotation set is usable.
func ValidateAccounts(pool []models.Sender, rotationIDs []uint) error {
	byID := make(map[uint]*models.Sender, len(pool))
	for i := range pool {
		byID[pool[i].ID] = &pool[i]
	}

	verr := &ValidationError{}
	for _, id := range rotationIDs {
		sender, ok := byID[id]
		if !ok {
			verr.Missing = append(verr.Missing, id)
			continue
		}
		if !sender.SMTPVerified {
			verr.Unverified = append(verr.Unverified, id)
		}
	}

	if len(verr.Missing) > 0 || len(verr.Unverified) > 0 {
		return verr
	}
	return nil
}
