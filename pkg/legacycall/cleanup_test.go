package legacycall

import (
	"testing"

	"github.com/enabletech/adaptermigrate/pkg/rewrite"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"
)

func TestCleanupPipeline(t *testing.T) {
	suite.Run(t, new(cleanupPipelineTestSuite))
}

type cleanupPipelineTestSuite struct {
	suite.Suite
	pipeline *rewrite.Pipeline
}

func (s *cleanupPipelineTestSuite) SetupTest() {
	s.pipeline = CleanupPipeline(DefaultOptions())
}

func (s *cleanupPipelineTestSuite) TestRepairs() {
	cases := []struct {
		name     string
		text     string
		expected string
		rule     string
	}{
		{
			name: "duplicate timeout",
			text: `    final r = await SupabaseAdapter.deleteData(
      table: 't',
      where: w,
    ).timeout(Duration(seconds: 15));
    ).timeout(Duration(seconds: 15));
`,
			expected: `    final r = await SupabaseAdapter.deleteData(
      table: 't',
      where: w,
    );
`,
			rule: RuleDuplicateTimeout,
		},
		{
			name: "leftover request arguments",
			text: `    final response = await SupabaseAdapter.getData(
      table: 'members',
    );
      Uri.parse('https://example.com/api/dynamic_api.php'),
      headers: {'Content-Type': 'application/json'},
      body: json.encode({
        'operation': 'get',
        'table': 'members',
      }),
    ).timeout(Duration(seconds: 15));

    if (response.statusCode == 200) {
      load(response);
    }
`,
			expected: `    final response = await SupabaseAdapter.getData(
      table: 'members',
    );

    if (true) {
      load(response);
    }
`,
			rule: RuleStaleFragments,
		},
		{
			name: "stale duplicate legacy call",
			text: `    final response = await SupabaseAdapter.getData(
      table: 'members',
    );
    final response = await http.post(
      Uri.parse('https://example.com/api/dynamic_api.php'),
      body: json.encode({'operation': 'get', 'table': 'members'}),
    );
    use(response);
`,
			expected: `    final response = await SupabaseAdapter.getData(
      table: 'members',
    );
    use(response);
`,
			rule: RuleStaleFragments,
		},
		{
			name: "status check tail",
			text: `    final rows = await SupabaseAdapter.getData(
      table: 'members',
    );200) {
      members = rows;
    }
`,
			expected: `    final rows = await SupabaseAdapter.getData(
      table: 'members',
    );
    if (rows.isNotEmpty) {
      members = rows;
    }
`,
			rule: RuleStatusTail,
		},
		{
			name: "response handling of adapter writes",
			text: `    final res = await SupabaseAdapter.updateData(
      table: 't',
      data: d,
      where: w,
    );
    if (res.statusCode != 200) {
      final body = json.decode(res.body);
      throw Exception('${body['error']}');
    }
`,
			expected: `    final res = await SupabaseAdapter.updateData(
      table: 't',
      data: d,
      where: w,
    );
    if (res['success'] != true) {
      final body = res;
      throw Exception('${body['message']}');
    }
`,
			rule: RuleAdapterResponses,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			res := s.pipeline.Run("lib/a.dart", tc.text)
			s.Empty(cmp.Diff(tc.expected, res.Text))
			s.Empty(res.Flags)
			s.Positive(hits(res)[tc.rule])

			again := s.pipeline.Run("lib/a.dart", res.Text)
			s.False(again.Changed, "cleanup must be idempotent")
		})
	}
}

func (s *cleanupPipelineTestSuite) TestDropsHTTPImportAfterRepair() {
	text := `import 'package:http/http.dart' as http;
import '/services/supabase_adapter.dart';

Future<void> f() async {
  final response = await SupabaseAdapter.getData(
    table: 't',
  );
  final response = await http.post(
    Uri.parse(url + 'dynamic_api.php'),
    body: json.encode({'operation': 'get', 'table': 't'}),
  );
}
`
	res := s.pipeline.Run("lib/a.dart", text)

	s.Equal(`import '/services/supabase_adapter.dart';

Future<void> f() async {
  final response = await SupabaseAdapter.getData(
    table: 't',
  );
}
`, res.Text)
}

func (s *cleanupPipelineTestSuite) TestCleanFileUntouched() {
	for name, text := range map[string]string{
		"migrated file":     memberServiceMigrated,
		"unrelated file":    "import 'package:http/http.dart' as http;\nvoid main() {}\n",
		"legacy only":       memberService,
		"fragment far away": "  final r = await SupabaseAdapter.getData(\n    table: 't',\n  );\n  print(r);\n  headers: {},\n",
	} {
		s.Run(name, func() {
			res := s.pipeline.Run("lib/a.dart", text)
			s.False(res.Changed)
			s.Equal(text, res.Text)
		})
	}
}

func (s *cleanupPipelineTestSuite) TestUnterminatedFragmentIsKept() {
	text := `    final r = await SupabaseAdapter.getData(
      table: 't',
    );
      Uri.parse('https://example.com/dynamic_api.php'),
      headers: {'a': 'b'},
  }
}
`
	res := s.pipeline.Run("lib/a.dart", text)

	s.False(res.Changed)
	s.Equal(text, res.Text)
	s.Require().Len(res.Flags, 1)
	s.Equal(4, res.Flags[0].Line)
	s.Equal(RuleStaleFragments, res.Flags[0].Rule)
}
