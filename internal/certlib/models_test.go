package certlib

/*
crtree — subdomain trees from Certificate Transparency search results
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `[
  {"issuer_ca_id":16418,"issuer_name":"C=US, O=Let's Encrypt, CN=R3","common_name":"www.example.com","name_value":"example.com\nwww.example.com","id":1,"entry_timestamp":"2024-01-01T00:00:00.000","not_before":"2024-01-01T00:00:00","not_after":"2024-04-01T00:00:00","serial_number":"03aa"},
  {"issuer_ca_id":16418,"issuer_name":"C=US, O=Let's Encrypt, CN=R3","common_name":"mail.example.com","name_value":"mail.example.com\n*.mail.example.com","id":2},
  {"issuer_ca_id":16418,"issuer_name":"C=US, O=Let's Encrypt, CN=R3","common_name":"www.example.com","name_value":"www.example.com","id":3}
]`

func decodeSample(t *testing.T) []Record {
	t.Helper()
	var records []Record
	require.NoError(t, json.Unmarshal([]byte(sampleResponse), &records))
	return records
}

func TestRecordDecoding(t *testing.T) {
	t.Parallel()

	records := decodeSample(t)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(16418), records[0].IssuerCAID)
	assert.Equal(t, "www.example.com", records[0].CommonName)
	assert.Equal(t, "03aa", records[0].SerialNumber)
	assert.Empty(t, records[1].SerialNumber)
}

func TestRecordNames(t *testing.T) {
	t.Parallel()

	r := Record{CommonName: "www.example.com", NameValue: "example.com\n www.example.com \n\n"}
	assert.Equal(t, []string{"www.example.com"}, r.Names(false))
	assert.Equal(t, []string{"www.example.com", "example.com", "www.example.com"}, r.Names(true))

	assert.Empty(t, Record{}.Names(true))
	assert.Equal(t, []string{"only.san"}, Record{NameValue: "only.san"}.Names(true))
}

func TestCollectNames(t *testing.T) {
	t.Parallel()

	records := decodeSample(t)

	testCases := []struct {
		name string
		opts NameOptions
		want []string
	}{
		{
			name: "common names only",
			want: []string{"www.example.com", "mail.example.com"},
		},
		{
			name: "with SANs",
			opts: NameOptions{IncludeSANs: true},
			want: []string{"www.example.com", "example.com", "mail.example.com", "*.mail.example.com"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CollectNames(records, tc.opts))
		})
	}
}

func TestCollectNamesNormalize(t *testing.T) {
	t.Parallel()

	records := []Record{
		{CommonName: "WWW.Example.com."},
		{CommonName: "www.example.com"},
		{CommonName: " . "},
		{CommonName: "Mail.Example.com"},
	}

	assert.Equal(t, []string{"WWW.Example.com.", "www.example.com", " . ", "Mail.Example.com"},
		CollectNames(records, NameOptions{}))
	assert.Equal(t, []string{"www.example.com", "mail.example.com"},
		CollectNames(records, NameOptions{Normalize: true}))
}
