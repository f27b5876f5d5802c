package rbac

// Default policy. Participants play; staff can nudge the displays and
// inspect ledgers; curators run the question pipeline; admins do
// everything including ending a season.
var RolePermissions = map[string][]string{
	"participant": {
		"qotd:view",
		"qotd:submit",
		"qotd:verify-own",
		"qotd:scores-own",
	},
	"staff": {
		"qotd:view",
		"qotd:submit",
		"qotd:verify-own",
		"qotd:verify-any",
		"qotd:scores-own",
		"qotd:refresh",
	},
	"curator": {
		"qotd:view",
		"qotd:submit",
		"qotd:verify-own",
		"qotd:verify-any",
		"qotd:scores-own",
		"qotd:refresh",
		"qotd:upload",
		"qotd:edit",
		"qotd:delete",
		"qotd:pending",
		"qotd:solution-set",
		"qotd:merge",
		"qotd:rollover",
	},
	"admin": {
		"*", // everything, including season:end and cache:reset
	},
}
