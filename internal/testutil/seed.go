package testutil

// Seed holds INSERT statements populating the fixture model's tables.
//
// Rows:
//   - persons 1 Ana (Person), 2 Bob (Employee), 3 Cid (Person)
//   - tickets 10 (Ana, Open), 11 (Bob, Closed), 12 (no owner, Open)
//   - documents 20 INV-1 (Invoice), 21 REC-1 (Receipt), 22 INV-2 (Invoice)
//   - positions 30/31 on 20 and 32 on 21
//   - products 40 Shirt (classified ProductClassTextile), 41 Mug
var Seed = []string{
	"INSERT INTO T_PERSON (ID, TYPEID, NAME, BIRTHDAY, CREATED, SALARY) VALUES" +
		" (1, 100, 'Ana', '1990-01-02', '2024-05-06 07:08:09', NULL)," +
		" (2, 101, 'Bob', '1985-03-04', NULL, 1200.5)," +
		" (3, 100, 'Cid', NULL, NULL, NULL)",
	"INSERT INTO T_PERSON_EXT (ID, NICKNAME) VALUES (1, 'Annie'), (2, 'Bobby')",
	"INSERT INTO T_PERSONPHONE (ID, PERSONID, NUMBER) VALUES (1, 1, '555-1'), (2, 1, '555-2'), (3, 2, '555-3')",
	"INSERT INTO T_TICKET (ID, TITLE, OWNERID, STATUSID, PRIORITY) VALUES" +
		" (10, 'Broken printer', 1, 42, 1)," +
		" (11, 'Bug in login', 2, 43, 2)," +
		" (12, 'No owner', NULL, 42, 3)",
	"INSERT INTO T_DOC (ID, TYPEID, NAME, DOCDATE, STATUSID, CONTACTID) VALUES" +
		" (20, 301, 'INV-1', '2024-01-15', 52, 1)," +
		" (21, 302, 'REC-1', '2024-02-01', 51, 2)," +
		" (22, 301, 'INV-2', NULL, 51, NULL)",
	"INSERT INTO T_PRODUCT (ID, NAME, ACTIVE) VALUES (40, 'Shirt', 1), (41, 'Mug', 0)",
	"INSERT INTO T_DOCPOS (ID, DOCID, PRODUCTID, QUANTITY) VALUES (30, 20, 40, 2), (31, 20, 41, 5), (32, 21, 40, 1)",
	"INSERT INTO T_PRODCLASS (ID, TYPEID, PRODUCTID, COLOR, MATERIAL, STATUSID) VALUES (50, 601, 40, 'red', 'cotton', 52)",
}
