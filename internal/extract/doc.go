// Package extract turns a DuckDuckGo lite result page into search results.
//
// The page is parsed with golang.org/x/net/html into a tree and queried
// through the Node interface, which offers FindFirst and FindAll with CSS
// selectors (backed by goquery and cascadia). The Extractor walks result
// candidates in document order:
//
//	<table>
//	  <tr>
//	    <td><a class="result-link" href="https://go.dev/">The Go Programming Language</a></td>
//	    <td class="result-snippet">Go is an open source programming language.</td>
//	  </tr>
//	</table>
//
// A candidate without a result link is skipped, as is one whose title or URL
// is empty. Extraction never fails: malformed markup only produces fewer
// results.
package extract
