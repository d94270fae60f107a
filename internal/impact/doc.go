// Package impact runs the dbt-to-DataHub impact analysis pipeline.
//
// The pipeline runs in three strictly sequential steps:
//
//  1. list the dbt nodes changed against the baseline state
//  2. resolve each changed node to the DataHub dataset carrying its
//     dbt_unique_id custom property
//  3. fetch the downstream lineage of every resolved dataset, optionally
//     several queries at a time
//
// Any failure aborts the run; there are no partial results. Rendering the
// outcome is left to package report.
package impact
