package contact_tools

import (
	"sort"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/outlook-mcp/internal/outlook"
	"github.com/teemow/outlook-mcp/internal/outlook/outlooktest"
	"github.com/teemow/outlook-mcp/internal/tools/tooltest"
)

func newServer(t *testing.T, fake *outlooktest.Outlook, readOnly bool) *mcpserver.MCPServer {
	t.Helper()
	s := mcpserver.NewMCPServer("test", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterContactTools(s, tooltest.NewServerContext(t, fake), readOnly))
	return s
}

func call(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]any) (map[string]any, bool) {
	t.Helper()
	env, result := tooltest.Call(t, tooltest.Handler(t, s, name), name, args)
	return env, result.IsError
}

func addressBook() *outlooktest.Items {
	contact := func(id, name, email, company string) outlook.Object {
		return outlooktest.Contact(map[string]any{
			"EntryID":       id,
			"FullName":      name,
			"Email1Address": email,
			"CompanyName":   company,
		})
	}
	return outlooktest.NewItems(
		contact("C-3", "Carol White", "carol@acme.example", "Acme"),
		contact("C-1", "Alice Smith", "alice@example.com", "Globex"),
		contact("C-2", "Bob Smithers", "bob@example.com", ""),
	)
}

func names(t *testing.T, env map[string]any) []string {
	t.Helper()
	list, ok := env["contacts"].([]any)
	require.True(t, ok, "contacts is %T", env["contacts"])
	out := make([]string, len(list))
	for i, c := range list {
		out[i], _ = c.(map[string]any)["full_name"].(string)
	}
	return out
}

func TestRegisterContactTools(t *testing.T) {
	all := tooltest.Tools(newServer(t, outlooktest.NewOutlook(), false))
	sort.Strings(all)
	assert.Equal(t, []string{"create_contact", "get_contacts", "search_contacts"}, all)

	readOnly := tooltest.Tools(newServer(t, outlooktest.NewOutlook(), true))
	sort.Strings(readOnly)
	assert.Equal(t, []string{"get_contacts", "search_contacts"}, readOnly)
}

func TestGetContacts(t *testing.T) {
	fake := outlooktest.NewOutlook()
	items := addressBook()
	fake.SetDefaultItems(outlook.FolderContacts, items)
	s := newServer(t, fake, false)

	env, isErr := call(t, s, "get_contacts", nil)
	require.False(t, isErr, "%v", env)
	assert.Equal(t, float64(3), env["count"])
	assert.Equal(t, []string{"Alice Smith", "Bob Smithers", "Carol White"}, names(t, env))
	assert.Equal(t, []string{"[FullName]"}, items.Log.Sorts())
	assert.NotContains(t, env, "search_name")
}

func TestGetContacts_SearchName(t *testing.T) {
	fake := outlooktest.NewOutlook()
	fake.SetDefaultItems(outlook.FolderContacts, addressBook())
	s := newServer(t, fake, false)

	env, isErr := call(t, s, "get_contacts", map[string]any{"search_name": "smith", "limit": float64(1)})
	require.False(t, isErr)
	assert.Equal(t, []string{"Alice Smith"}, names(t, env))
	assert.Equal(t, "smith", env["search_name"])
}

func TestSearchContacts(t *testing.T) {
	fake := outlooktest.NewOutlook()
	fake.SetDefaultItems(outlook.FolderContacts, addressBook())
	s := newServer(t, fake, false)

	env, isErr := call(t, s, "search_contacts", map[string]any{"query": "ACME"})
	require.False(t, isErr)
	assert.Equal(t, []string{"Carol White"}, names(t, env))

	env, _ = call(t, s, "search_contacts", map[string]any{"query": "example.com"})
	assert.Equal(t, []string{"Alice Smith", "Bob Smithers"}, names(t, env))
}

func TestSearchContacts_RequiresQuery(t *testing.T) {
	fake := outlooktest.NewOutlook()
	s := newServer(t, fake, false)

	env, isErr := call(t, s, "search_contacts", map[string]any{})
	assert.True(t, isErr)
	assert.Equal(t, "validation", env["error_type"])
	assert.Zero(t, fake.Connects())
}

func TestCreateContact(t *testing.T) {
	fake := outlooktest.NewOutlook()
	s := newServer(t, fake, false)

	env, isErr := call(t, s, "create_contact", map[string]any{
		"full_name":    "Dana Scully",
		"email":        "dana@fbi.example",
		"mobile_phone": "+1 555 0100",
	})
	require.False(t, isErr, "%v", env)
	assert.Equal(t, "NEW-1", env["contact_id"])
	assert.Equal(t, "Contact 'Dana Scully' created", env["message"])

	c := fake.Created()[0]
	assert.Equal(t, "dana@fbi.example", c.Props["Email1Address"])
	assert.Equal(t, "+1 555 0100", c.Props["MobileTelephoneNumber"])
	assert.False(t, c.WasSet("CompanyName"))
}

func TestCreateContact_MissingEmail(t *testing.T) {
	fake := outlooktest.NewOutlook()
	s := newServer(t, fake, false)

	env, isErr := call(t, s, "create_contact", map[string]any{"full_name": "No Mail"})
	assert.True(t, isErr)
	assert.Equal(t, "validation", env["error_type"])
	assert.Empty(t, fake.Created())
}
