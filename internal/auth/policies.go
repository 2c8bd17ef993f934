package auth

import (
	"fmt"
	"mbs-hub/internal/data"
	"mbs-hub/internal/logger"

	"github.com/casbin/casbin/v2"
)

// RoleAnonymous is the subject used for callers without a session.
const RoleAnonymous = "anonymous"

// previewPolicy opens the preview namespace to everyone when admin is not required.
var previewPolicy = []string{RoleAnonymous, "preview.*", ActQuery}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, requireAdminForPreview bool, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	policies := [][]string{
		// Public reads and the newsletter form.
		{RoleAnonymous, "content.*", ActQuery},
		{RoleAnonymous, "authors.*", ActQuery},
		{RoleAnonymous, "newsletter.*", ActMutation},
		{RoleAnonymous, "auth.*", "*"},
		{RoleAnonymous, "system.*", ActQuery},

		// Editors read drafts.
		{string(data.RoleAdmin), "preview.*", ActQuery},
	}
	for _, p := range policies {
		addPolicy(e, p, log)
	}

	if requireAdminForPreview {
		if has, _ := e.HasPolicy(previewPolicy); has {
			if _, err := e.RemovePolicy(previewPolicy); err != nil {
				log.Error(err, "Failed to remove anonymous preview policy")
			}
		}
	} else {
		addPolicy(e, previewPolicy, log)
	}

	// admin -> user -> anonymous
	roles := [][2]string{
		{string(data.RoleUser), RoleAnonymous},
		{string(data.RoleAdmin), string(data.RoleUser)},
	}
	for _, r := range roles {
		if has, _ := e.HasRoleForUser(r[0], r[1]); !has {
			if _, err := e.AddRoleForUser(r[0], r[1]); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", r[0], r[1]))
			}
		}
	}
	log.Info("Policy seeding complete.")
}

func addPolicy(e casbin.IEnforcer, p []string, log logger.Logger) {
	if has, _ := e.HasPolicy(p); !has {
		if _, err := e.AddPolicy(p); err != nil {
			log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
		}
	}
}
