/*
Package channels holds the static channel catalog of the mesh.

External channels are the only ones visible across process boundaries.
Internal names are local event labels used to bridge the coordinator to
business logic inside one process.
*/
package channels

import "sort"

// Domain names one bounded context of the mesh.
type Domain string

const (
	User         Domain = "User"
	Chat         Domain = "Chat"
	Community    Domain = "Community"
	Company      Domain = "Company"
	Registration Domain = "Registration"
	MessageHub   Domain = "MessageHub"
)

// External holds the cross-process channel names of a domain.
type External struct {
	Event          string
	CompletedEvent string
}

// Entry is one catalog record.
type Entry struct {
	External External
	Internal map[string]string
}

// catalog is loaded once and never mutated after init.
var catalog = map[Domain]Entry{
	User: {
		External: External{Event: "UserEvent", CompletedEvent: "UserEventCompleted"},
		Internal: crudInternal("user"),
	},
	Chat: {
		External: External{Event: "ChatEvent", CompletedEvent: "ChatEventCompleted"},
		Internal: crudInternal("chat"),
	},
	Community: {
		External: External{Event: "CommunityEvent", CompletedEvent: "CommunityEventCompleted"},
		Internal: crudInternal("community"),
	},
	Company: {
		External: External{Event: "CompanyEvent", CompletedEvent: "CompanyEventCompleted"},
		Internal: crudInternal("company"),
	},
	Registration: {
		External: External{Event: "RegistrationEvent", CompletedEvent: "RegistrationEventCompleted"},
		Internal: map[string]string{
			"register":       "registrationRegisterEvent",
			"registerDone":   "registrationRegisterCompletedEvent",
			"confirm":        "registrationConfirmEvent",
			"confirmDone":    "registrationConfirmCompletedEvent",
			"resendCode":     "registrationResendCodeEvent",
			"resendCodeDone": "registrationResendCodeCompletedEvent",
		},
	},
	MessageHub: {
		External: External{Event: "MessageHubEvent", CompletedEvent: "MessageHubEventCompleted"},
		Internal: map[string]string{
			"send":     "messageHubSendEvent",
			"sendDone": "messageHubSendCompletedEvent",
		},
	},
}

// crudInternal builds the internal event labels of a plain CRUD domain.
func crudInternal(prefix string) map[string]string {
	return map[string]string{
		"create":        prefix + "CreateEvent",
		"createDone":    prefix + "CreateCompletedEvent",
		"update":        prefix + "UpdateEvent",
		"updateDone":    prefix + "UpdateCompletedEvent",
		"delete":        prefix + "DeleteEvent",
		"deleteDone":    prefix + "DeleteCompletedEvent",
		"getSingle":     prefix + "GetSingleEvent",
		"getSingleDone": prefix + "GetSingleCompletedEvent",
		"getAll":        prefix + "GetAllEvent",
		"getAllDone":    prefix + "GetAllCompletedEvent",
	}
}

// Lookup returns the catalog entry of a domain.
func Lookup(domain Domain) (Entry, bool) {
	entry, ok := catalog[domain]

	return entry, ok
}

// Domains returns every domain in the catalog, sorted for determinism.
func Domains() []Domain {
	domains := make([]Domain, 0, len(catalog))
	for domain := range catalog {
		domains = append(domains, domain)
	}

	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })

	return domains
}

// ExternalChannels returns every cross-process channel name in the catalog.
// Bulk deregistration walks this list on process shutdown.
func ExternalChannels() []string {
	names := make([]string, 0, len(catalog)*2)
	for _, entry := range catalog {
		names = append(names, entry.External.Event, entry.External.CompletedEvent)
	}

	sort.Strings(names)

	return names
}
